package handlers

import (
	"context"

	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/influx"
	"github.com/qc-advancedmedic/nui/internal/journal"
)

// recordingGateway journals every host callback and its outcome.
type recordingGateway struct {
	next gateway.Gateway
	svc  *Service
}

func (g *recordingGateway) Post(ctx context.Context, endpoint string, payload any) (gateway.Response, error) {
	start := g.svc.deps.Now()
	resp, err := g.next.Post(ctx, endpoint, payload)
	latency := g.svc.deps.Now().Sub(start)

	o := describe(endpoint, payload)
	o.Success = err == nil && resp.OK()
	if _, ok := payload.(gateway.TreatmentRequest); ok {
		o.Success = err == nil && resp.Succeeded()
	}
	o.Latency = latency
	o.Time = start

	entry := journal.NewEntry(journal.KindOutcome, endpoint).WithPayload(payload)
	entry.Endpoint = endpoint
	entry.BodyPart = o.BodyPart
	entry.PatientID = o.PatientID
	entry.Success = o.Success
	switch {
	case err != nil:
		entry.Message = err.Error()
	default:
		entry.Message = resp.Message
	}
	g.svc.record(ctx, entry)

	if g.svc.deps.Outcomes != nil {
		if werr := g.svc.deps.Outcomes.WriteOutcome(ctx, o); werr != nil {
			g.svc.deps.Logger.Debug("Failed to write outcome metric", "endpoint", endpoint, "error", werr)
		}
	}
	return resp, err
}

// describe pulls the tags of an outcome out of a callback body.
func describe(endpoint string, payload any) influx.Outcome {
	o := influx.Outcome{Endpoint: endpoint}
	switch p := payload.(type) {
	case gateway.TreatmentRequest:
		o.Action = p.Action
		o.BodyPart = p.Data.BodyPart
		o.ItemType = p.Data.ItemType
		o.PatientID = p.Data.PlayerID
	case gateway.VitalsRequest:
		o.Action = p.Action
		o.PatientID = p.Data.PlayerID
	case gateway.ToolRequest:
		o.Action = p.Action
		o.ItemType = p.Target
		o.PatientID = p.PlayerID
	case gateway.BodyPartTreatment:
		o.BodyPart = p.BodyPart
		o.ItemType = p.BandageType
		if o.ItemType == "" {
			o.ItemType = p.TreatmentType
		}
	}
	return o
}
