package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibos:
//  1. Fetch the committed Venta with its items
//  2. Render the PDF receipt
//  3. Enqueue an email job when the sale carries a customer email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevinserna01/react-cabina-sub000/internal/infra"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibos.
type ReciboJobPayload struct {
	VentaID string `json:"venta_id"`
}

// VentaFinder is the slice of repository.VentaRepository the worker needs.
type VentaFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
}

type ReciboWorker struct {
	ventas         VentaFinder
	dispatcher     *Dispatcher
	businessName   string
	pdfStoragePath string
	emailEnabled   bool
}

// NewReciboWorker wires the receipt worker. Email jobs are only enqueued
// when emailEnabled is set.
func NewReciboWorker(ventas VentaFinder, dispatcher *Dispatcher, businessName, pdfStoragePath string, emailEnabled bool) *ReciboWorker {
	return &ReciboWorker{
		ventas:         ventas,
		dispatcher:     dispatcher,
		businessName:   businessName,
		pdfStoragePath: pdfStoragePath,
		emailEnabled:   emailEnabled,
	}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("recibo_worker: invalid payload: %w", err)
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return fmt.Errorf("recibo_worker: invalid venta_id %q", payload.VentaID)
	}

	var venta *model.Venta
	err = withRetry(ctx, maxJobAttempts, func(int) error {
		v, err := w.ventas.FindByID(ctx, ventaID)
		venta = v
		return err
	})
	if err != nil {
		return fmt.Errorf("recibo_worker: load venta %s: %w", payload.VentaID, err)
	}

	pdfPath, err := infra.GenerateReciboPDF(venta, w.businessName, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("recibo_worker: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("codigo", venta.Codigo).Msg("recibo_worker: PDF generated")

	if !w.emailEnabled || venta.ClienteEmail == nil || *venta.ClienteEmail == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail: *venta.ClienteEmail,
		Subject: fmt.Sprintf("%s - Recibo %s", w.businessName, venta.Codigo),
		Body:    fmt.Sprintf("Adjunto encontraras el recibo de tu compra.\nTotal: $%s", venta.Total.StringFixed(0)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		// Email is best effort once the PDF is on disk.
		log.Warn().Err(err).Str("codigo", venta.Codigo).Msg("recibo_worker: failed to enqueue email")
	}
	return nil
}
