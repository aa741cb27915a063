package quorum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quorumlabs/quorum/internal/logging"
	"github.com/quorumlabs/quorum/internal/metrics"
	"github.com/quorumlabs/quorum/pkg/adapters/memory"
	"github.com/quorumlabs/quorum/pkg/dag"
	"github.com/quorumlabs/quorum/pkg/domain"
	"github.com/quorumlabs/quorum/pkg/flight"
	"github.com/quorumlabs/quorum/pkg/ports"
	"github.com/quorumlabs/quorum/pkg/stream"
	"github.com/quorumlabs/quorum/pkg/transcript"
)

// Client orchestrates a send: optimistic transcript update, the
// initiating transport call, the decode loop feeding the reducer and
// the status projector, and persistence of the resulting conversation.
type Client struct {
	transport ports.Transport
	store     ports.ConversationStore
	workflows ports.WorkflowLoader
	flights   *flight.Manager
	reducer   *transcript.Reducer
	logger    *slog.Logger
	stats     *metrics.Metrics
}

// SendRequest describes one send. An empty ConversationID starts a new
// conversation.
type SendRequest struct {
	ConversationID string
	WorkflowID     string
	Content        string
}

// Listeners receive live updates during a send. All callbacks are
// optional and are invoked synchronously from the decode loop, in exact
// stream order.
type Listeners struct {
	// OnEvent fires for every decoded event.
	OnEvent func(domain.ProtocolEvent)
	// OnStatus fires with a fresh status snapshot after every event.
	OnStatus func(dag.StatusMap)
	// OnStageError fires when the backend reports a stage failure. The
	// send keeps consuming the stream; only this send's result is
	// considered failed.
	OnStageError func(*domain.StageError)
}

// SendResult is the outcome of a completed send.
type SendResult struct {
	Conversation *domain.Conversation
	Statuses     dag.StatusMap
	// Forest is the workflow tree annotated with final statuses.
	Forest []*domain.TreeNode
	// StageErrors collects backend-reported stage failures, in order.
	StageErrors []*domain.StageError
}

// New creates a Client. The transport is required; the store and
// workflow loader default to in-memory implementations.
func New(transport ports.Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	c := &Client{
		transport: transport,
		logger:    logging.NewNop(),
		reducer:   transcript.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.workflows == nil {
		c.workflows = memory.NewLoader()
	}
	if c.flights == nil {
		c.flights = flight.NewManager(flight.WithLogger(c.logger))
	}
	return c, nil
}

// Send submits content to the workflow and consumes the progress stream
// to completion (or ctx cancellation). The conversation is locked for
// the duration: a concurrent Send on the same conversation waits.
//
// On transport failure the optimistic message pair is rolled back and
// the conversation is untouched. On cancellation the conversation keeps
// exactly the prefix of the stream that was processed.
func (c *Client) Send(ctx context.Context, req SendRequest, ls *Listeners) (*SendResult, error) {
	if ls == nil {
		ls = &Listeners{}
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	var result *SendResult
	err := c.flights.WithLock(ctx, req.ConversationID, func(ctx context.Context) error {
		var err error
		result, err = c.send(ctx, req, ls)
		return err
	})
	return result, err
}

func (c *Client) send(ctx context.Context, req SendRequest, ls *Listeners) (*SendResult, error) {
	workflow, err := c.workflows.Get(ctx, req.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workflow %q: %w", req.WorkflowID, err)
	}

	conv, err := c.loadOrStart(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	// Optimistic phase: the pair is appended and persisted before any
	// network confirmation, and removed again if the transport call
	// fails.
	next := c.reducer.Begin(conv, req.Content)
	c.persist(ctx, next)

	body, err := c.transport.OpenStream(ctx, ports.SendRequest{
		ConversationID: req.ConversationID,
		WorkflowID:     req.WorkflowID,
		Content:        req.Content,
	})
	if err != nil {
		c.stats.SendFinished("transport_error")
		restored, rbErr := c.reducer.Rollback(next)
		if rbErr != nil {
			c.logger.Error("rollback after transport failure", "err", rbErr)
		} else {
			c.persist(ctx, restored)
		}
		return nil, fmt.Errorf("send to conversation %s: %w", req.ConversationID, err)
	}

	decoder := stream.NewDecoder(body, stream.WithLogger(c.logger), stream.WithMetrics(c.stats))
	defer decoder.Close()
	streamDone := c.stats.StreamOpened()
	defer streamDone()

	projector := dag.NewProjector(workflow.Nodes)
	var stageErrors []*domain.StageError

	for {
		ev, err := decoder.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Canceled mid-stream: keep the processed prefix, release
			// the source, apply nothing further.
			c.stats.SendFinished("canceled")
			c.persist(ctx, next)
			return nil, err
		}

		projector.Observe(ev)

		applied, err := c.reducer.Apply(next, ev)
		if err != nil {
			var perr *domain.ProtocolError
			if errors.As(err, &perr) {
				c.stats.EventDropped()
				c.logger.Error("event rejected by reducer", "kind", ev.Kind, "stage", ev.StageID, "err", err)
				continue
			}
			return nil, err
		}
		next = applied

		if ev.Kind == domain.EventStageError {
			stageErr := &domain.StageError{StageID: ev.StageID, Message: ev.Message}
			stageErrors = append(stageErrors, stageErr)
			if ls.OnStageError != nil {
				ls.OnStageError(stageErr)
			}
		}
		if ls.OnEvent != nil {
			ls.OnEvent(ev)
		}
		if ls.OnStatus != nil {
			ls.OnStatus(projector.Snapshot())
		}
	}

	c.persist(ctx, next)

	statuses := projector.Snapshot()
	forest, err := dag.BuildForest(workflow.Nodes, workflow.Edges, statuses)
	if err != nil {
		c.stats.SendFinished("protocol_error")
		return nil, fmt.Errorf("workflow %q is unrenderable: %w", req.WorkflowID, err)
	}

	if len(stageErrors) > 0 {
		c.stats.SendFinished("stage_error")
	} else {
		c.stats.SendFinished("ok")
	}
	return &SendResult{
		Conversation: &next,
		Statuses:     statuses,
		Forest:       forest,
		StageErrors:  stageErrors,
	}, nil
}

// Conversation loads a stored conversation.
func (c *Client) Conversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return c.store.Load(ctx, id)
}

// Workflow resolves a workflow definition.
func (c *Client) Workflow(ctx context.Context, id string) (*domain.Workflow, error) {
	return c.workflows.Get(ctx, id)
}

func (c *Client) loadOrStart(ctx context.Context, id string) (domain.Conversation, error) {
	stored, err := c.store.Load(ctx, id)
	if err == nil {
		return *stored, nil
	}
	if errors.Is(err, domain.ErrConversationNotFound) {
		return domain.NewConversation(id), nil
	}
	return domain.Conversation{}, fmt.Errorf("failed to load conversation %s: %w", id, err)
}

func (c *Client) persist(ctx context.Context, conv domain.Conversation) {
	// Persistence runs even when the send context was canceled.
	if err := c.store.Save(context.WithoutCancel(ctx), &conv); err != nil {
		c.logger.Error("failed to persist conversation", "conversation", conv.ID, "err", err)
	}
}
