// Package events handles event emission for grant workflow lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	utils "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/kafka"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Publisher is the subset of the Kafka producer the emitter needs
type Publisher interface {
	PublishWorkflowEvent(ctx context.Context, event *kafka.WorkflowEvent) error
}

// Emitter emits workflow events. Emission failures are logged and swallowed
// so that a broker outage never fails the originating request.
type Emitter struct {
	producer Publisher
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter. A nil producer disables emission.
func NewEmitter(producer Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitProposalStatusChanged emits an event for a proposal status transition,
// e.g. "proposal.submitted" or "proposal.approved".
func (e *Emitter) EmitProposalStatusChanged(ctx context.Context, eventType string, proposalID string, payload any) {
	e.emit(ctx, eventType, "proposal", proposalID, proposalID, payload)
}

// EmitContractEvent emits "kontrak.created" or "kontrak.signed".
func (e *Emitter) EmitContractEvent(ctx context.Context, eventType string, proposalID string, contractID string, payload any) {
	e.emit(ctx, eventType, "kontrak", proposalID, contractID, payload)
}

// EmitMonitoringEvent emits "monitoring.submitted" or "monitoring.verified".
func (e *Emitter) EmitMonitoringEvent(ctx context.Context, eventType string, proposalID string, reportID string, payload any) {
	e.emit(ctx, eventType, "monitoring", proposalID, reportID, payload)
}

// EmitDisbursementEvent emits "pencairan.requested", "pencairan.released" or
// "pencairan.rejected".
func (e *Emitter) EmitDisbursementEvent(ctx context.Context, eventType string, proposalID string, trancheID string, payload any) {
	e.emit(ctx, eventType, "pencairan", proposalID, trancheID, payload)
}

// EmitOutputEvent emits "luaran.created", "luaran.verified" or "luaran.rejected".
func (e *Emitter) EmitOutputEvent(ctx context.Context, eventType string, proposalID string, outputID string, payload any) {
	e.emit(ctx, eventType, "luaran", proposalID, outputID, payload)
}

// EmitSeminarEvent emits "seminar.scheduled", "seminar.completed" or
// "seminar.cancelled".
func (e *Emitter) EmitSeminarEvent(ctx context.Context, eventType string, proposalID string, seminarID string, payload any) {
	e.emit(ctx, eventType, "seminar", proposalID, seminarID, payload)
}

func (e *Emitter) emit(ctx context.Context, eventType, entityType, proposalID, entityID string, payload any) {
	if e.producer == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emit")
	defer span.End()

	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(map[string]any{
			"schema_version": SchemaVersion,
			"data":           payload,
		})
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).Errorf("Failed to encode %s event payload", eventType)
			return
		}
		data = encoded
	}

	event := &kafka.WorkflowEvent{
		EventType:  eventType,
		ProposalID: proposalID,
		EntityID:   entityID,
		EntityType: entityType,
		ActorID:    utils.GetUserID(ctx),
		Data:       data,
	}

	if err := e.producer.PublishWorkflowEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
	}
}
