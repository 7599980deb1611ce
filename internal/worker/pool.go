package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sowin/internal/infra"
)

const (
	QueueAlertasStock   = "jobs:alertas_stock"
	QueuePurgaHistorial = "jobs:purga_historial"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AlertaStockPayload describes a product that fell to or below its minimum
// after a committed sale or adjustment.
type AlertaStockPayload struct {
	ProductoID     string `json:"producto_id"`
	NombreProducto string `json:"nombre_producto"`
	CodigoBarras   string `json:"codigo_barras"`
	StockActual    int    `json:"stock_actual"`
	StockMinimo    int    `json:"stock_minimo"`
}

// PurgaHistorialPayload asks the pool to drop receipt rows older than the
// retention window. Stock is never touched by a purge.
type PurgaHistorialPayload struct {
	MesesConservar int `json:"meses_conservar"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAlertaStock pushes a low-stock alert job. Enqueueing happens after
// the sale committed; a lost alert never rolls back a sale.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload AlertaStockPayload) error {
	return d.enqueue(ctx, QueueAlertasStock, "alerta_stock", payload)
}

// EnqueuePurgaHistorial pushes a retention purge job.
func (d *Dispatcher) EnqueuePurgaHistorial(ctx context.Context, payload PurgaHistorialPayload) error {
	return d.enqueue(ctx, QueuePurgaHistorial, "purga_historial", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// PurgadorEntradas is the slice of the receipts repository the purge worker
// needs.
type PurgadorEntradas interface {
	PurgeOlderThan(ctx context.Context, limite time.Time) (int64, error)
}

// Pool consumes alert and purge jobs from Redis.
type Pool struct {
	rdb        *redis.Client
	mailer     *infra.Mailer
	alertEmail string
	entradas   PurgadorEntradas
}

func NewPool(rdb *redis.Client, mailer *infra.Mailer, alertEmail string, entradas PurgadorEntradas) *Pool {
	return &Pool{rdb: rdb, mailer: mailer, alertEmail: alertEmail, entradas: entradas}
}

// Start launches numWorkers goroutines consuming the job queues. Each
// goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool iniciado")
}

// StartRetencion enqueues a purge job every cada, keeping mesesConservar
// months of receipts. No-op when mesesConservar is zero.
func (p *Pool) StartRetencion(ctx context.Context, mesesConservar int, cada time.Duration) {
	if mesesConservar <= 0 {
		return
	}
	dispatcher := NewDispatcher(p.rdb)
	go func() {
		ticker := time.NewTicker(cada)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				payload := PurgaHistorialPayload{MesesConservar: mesesConservar}
				if err := dispatcher.EnqueuePurgaHistorial(ctx, payload); err != nil {
					log.Error().Err(err).Msg("no se pudo encolar la purga de historial")
				}
			}
		}
	}()
	log.Info().Int("meses_conservar", mesesConservar).Dur("cada", cada).Msg("retención de entradas programada")
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker detenido")
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx.
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueAlertasStock, QueuePurgaHistorial).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("job ilegible")
		return
	}
	switch job.Type {
	case "alerta_stock":
		var payload AlertaStockPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("payload de alerta ilegible")
			return
		}
		p.enviarAlerta(payload)
	case "purga_historial":
		var payload PurgaHistorialPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("payload de purga ilegible")
			return
		}
		p.purgarHistorial(ctx, payload)
	default:
		log.Warn().Str("type", job.Type).Msg("tipo de job desconocido")
	}
}

func (p *Pool) enviarAlerta(payload AlertaStockPayload) {
	if p.mailer == nil || p.alertEmail == "" {
		log.Warn().Str("producto", payload.NombreProducto).Msg("alerta de stock sin destinatario configurado")
		return
	}
	if err := p.mailer.SendAlertaStock(p.alertEmail, payload.NombreProducto, payload.CodigoBarras, payload.StockActual, payload.StockMinimo); err != nil {
		log.Error().Err(err).Str("producto", payload.NombreProducto).Msg("no se pudo enviar la alerta de stock")
		return
	}
	log.Info().
		Str("producto", payload.NombreProducto).
		Int("stock_actual", payload.StockActual).
		Int("stock_minimo", payload.StockMinimo).
		Msg("alerta de stock enviada")
}

func (p *Pool) purgarHistorial(ctx context.Context, payload PurgaHistorialPayload) {
	if p.entradas == nil || payload.MesesConservar <= 0 {
		return
	}
	limite := time.Now().AddDate(0, -payload.MesesConservar, 0)
	n, err := p.entradas.PurgeOlderThan(ctx, limite)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo purgar el historial de entradas")
		return
	}
	log.Info().Int64("eliminadas", n).Str("limite", limite.Format("2006-01-02")).Msg("historial de entradas purgado")
}
