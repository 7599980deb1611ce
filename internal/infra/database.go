package infra

import (
	"fmt"

	"sowin/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies idempotent SQL patches for the
// constraints GORM cannot express: the non-negative stock CHECK and the
// ON DELETE behavior of every foreign key, which must match the per-entity
// delete-policy table exactly.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema and applies the constraint patches. Also
// used by the integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Proveedor{},
		&model.Rol{},
		&model.Modulo{},
		&model.Usuario{},
		&model.PermisoUsuario{},
		&model.Producto{},
		&model.Movimiento{},
		&model.Entrada{},
		&model.Salida{},
		&model.DetalleSalida{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle.
// Each statement is guarded by an existence check so re-running on an already
// patched schema is a no-op.
//
// Delete-time behavior per entity:
//   - productos history (detalle_salidas, movimientos, entradas): CASCADE
//   - detalle_salidas → salidas: CASCADE (line items owned by the header)
//   - usuarios refs (entradas, salidas, productos.creado_por): SET NULL
//   - permisos_usuario → usuarios: CASCADE
//   - productos → categorias / proveedores, usuarios → roles: RESTRICT
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"check stock_actual no negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"fk detalle_salidas.producto cascade", fkPatch("detalle_salidas", "producto_id", "productos", "CASCADE")},
		{"fk movimientos.producto cascade", fkPatch("movimientos", "producto_id", "productos", "CASCADE")},
		{"fk entradas.producto cascade", fkPatch("entradas", "producto_id", "productos", "CASCADE")},
		{"fk detalle_salidas.salida cascade", fkPatch("detalle_salidas", "salida_id", "salidas", "CASCADE")},
		{"fk entradas.usuario set null", fkPatch("entradas", "usuario_id", "usuarios", "SET NULL")},
		{"fk salidas.usuario set null", fkPatch("salidas", "usuario_id", "usuarios", "SET NULL")},
		{"fk productos.creado_por set null", fkPatch("productos", "creado_por", "usuarios", "SET NULL")},
		{"fk permisos_usuario.usuario cascade", fkPatch("permisos_usuario", "usuario_id", "usuarios", "CASCADE")},
		{"fk productos.categoria restrict", fkPatch("productos", "categoria_id", "categorias", "RESTRICT")},
		{"fk productos.proveedor restrict", fkPatch("productos", "proveedor_id", "proveedores", "RESTRICT")},
		{"fk usuarios.rol restrict", fkPatch("usuarios", "rol_id", "roles", "RESTRICT")},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// fkPatch builds an idempotent DO block that drops whatever FK currently
// covers table.column and re-creates it with the wanted ON DELETE action.
func fkPatch(table, column, refTable, onDelete string) string {
	name := fmt.Sprintf("fk_%s_%s", table, column)
	return fmt.Sprintf(`
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
    -- drop any auto-generated FK on the same column first
    PERFORM 1;
    EXECUTE (
      SELECT COALESCE(string_agg(format('ALTER TABLE %[2]s DROP CONSTRAINT %%I', conname), '; '), 'SELECT 1')
      FROM pg_constraint c
      JOIN pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = ANY (c.conkey)
      WHERE c.conrelid = to_regclass('%[2]s') AND c.contype = 'f' AND a.attname = '%[3]s'
    );
    ALTER TABLE %[2]s
      ADD CONSTRAINT %[1]s FOREIGN KEY (%[3]s) REFERENCES %[4]s(id) ON DELETE %[5]s;
  END IF;
END $$`, name, table, column, refTable, onDelete)
}
