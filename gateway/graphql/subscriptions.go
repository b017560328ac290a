package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	artemis "github.com/botobag/artemis/graphql"
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/artemis/graphql/executor"
	"github.com/botobag/artemis/graphql/parser"
	"github.com/botobag/artemis/graphql/token"
	"github.com/gorilla/websocket"

	"github.com/c360/blogstream/blog"
	"github.com/c360/blogstream/metric"
	"github.com/c360/blogstream/pubsub"
)

// Wire message types, following the graphql-ws convention.
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionTerminate = "connection_terminate"
	msgStart               = "start"
	msgStop                = "stop"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
)

// wsMessage is a single frame on the subscription socket
type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscriptionHandler upgrades HTTP requests to WebSocket connections
// and streams subscription results. Each start frame opens one
// notification subscription; the prepared operation is re-executed per
// event with the event as root value.
type SubscriptionHandler struct {
	schema   *artemis.Schema
	service  *blog.Service
	logger   *slog.Logger
	metrics  *metric.Metrics
	upgrader websocket.Upgrader
}

// NewSubscriptionHandler creates the WebSocket subscription handler
func NewSubscriptionHandler(schema *artemis.Schema, service *blog.Service, logger *slog.Logger, metrics *metric.Metrics) *SubscriptionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionHandler{
		schema:  schema,
		service: service,
		logger:  logger.With("component", "graphql-subscriptions"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin enforcement is handled by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler
func (h *SubscriptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	session := &wsSession{
		handler: h,
		conn:    conn,
		active:  make(map[string]context.CancelFunc),
	}
	session.run(r.Context())
}

// wsSession is the per-connection state. One reader goroutine drives
// the session; each active subscription gets a delivery goroutine.
type wsSession struct {
	handler *SubscriptionHandler
	conn    *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func (s *wsSession) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		s.cancelAll()
		s.conn.Close()
	}()

	for {
		var msg wsMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.handler.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			s.write(wsMessage{Type: msgConnectionAck})

		case msgStart:
			if err := s.start(ctx, msg); err != nil {
				s.writeError(msg.ID, err)
			}

		case msgStop:
			s.stop(msg.ID)

		case msgConnectionTerminate:
			return

		default:
			s.writeError(msg.ID, fmt.Errorf("unsupported message type %q", msg.Type))
		}
	}
}

// start parses and prepares the subscription operation, opens the
// matching notification subscription and spawns the delivery loop.
func (s *wsSession) start(ctx context.Context, msg wsMessage) error {
	if msg.ID == "" {
		return fmt.Errorf("subscription id is required")
	}

	var req Request
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("invalid start payload: %w", err)
	}

	document, err := parser.Parse(token.NewSource(&token.SourceConfig{
		Body: token.SourceBody([]byte(req.Query)),
	}), parser.ParseOptions{})
	if err != nil {
		return err
	}

	op, errs := executor.Prepare(executor.PrepareParams{
		Schema:        *s.handler.schema,
		Document:      document,
		OperationName: req.OperationName,
	})
	if errs.HaveOccurred() {
		return fmt.Errorf("%s", errorsMessage(errs))
	}
	if op.Type() != ast.OperationTypeSubscription {
		return fmt.Errorf("only subscription operations are accepted on this endpoint")
	}

	field, err := rootField(op.Definition())
	if err != nil {
		return err
	}

	var sub *pubsub.Subscription
	switch field.Name.Value() {
	case "post":
		sub = s.handler.service.SubscribePosts(ctx)

	case "comment":
		postID, err := postIDArgument(field, req.Variables)
		if err != nil {
			return err
		}
		sub, err = s.handler.service.SubscribeComments(ctx, postID)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown subscription field %q", field.Name.Value())
	}

	subCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if _, exists := s.active[msg.ID]; exists {
		s.mu.Unlock()
		cancel()
		sub.Cancel()
		return fmt.Errorf("subscription %q already active", msg.ID)
	}
	s.active[msg.ID] = cancel
	s.mu.Unlock()

	if s.handler.metrics != nil {
		s.handler.metrics.SubscriptionsActive.Inc()
	}

	go s.deliver(subCtx, msg.ID, op, sub, req.Variables)
	return nil
}

// deliver executes the prepared operation once per received event and
// streams the results until the subscription ends.
func (s *wsSession) deliver(ctx context.Context, id string, op *executor.PreparedOperation, sub *pubsub.Subscription, variables map[string]interface{}) {
	defer func() {
		sub.Cancel()
		s.stop(id)
		if s.handler.metrics != nil {
			s.handler.metrics.SubscriptionsActive.Dec()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-sub.Events():
			if !ok {
				s.write(wsMessage{ID: id, Type: msgComplete})
				return
			}

			result := <-op.Execute(ctx, executor.ExecuteParams{
				RootValue:      event,
				VariableValues: variables,
			})
			payload, err := json.Marshal(result)
			if err != nil {
				s.handler.logger.Error("failed to marshal subscription result", "error", err, "id", id)
				continue
			}
			s.write(wsMessage{ID: id, Type: msgData, Payload: payload})
		}
	}
}

// stop cancels the subscription registered under id, if any
func (s *wsSession) stop(id string) {
	s.mu.Lock()
	cancel, ok := s.active[id]
	if ok {
		delete(s.active, id)
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *wsSession) cancelAll() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.active))
	for _, cancel := range s.active {
		cancels = append(cancels, cancel)
	}
	s.active = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (s *wsSession) write(msg wsMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		s.handler.logger.Debug("websocket write failed", "error", err)
	}
}

func (s *wsSession) writeError(id string, err error) {
	payload, merr := json.Marshal(map[string]interface{}{
		"errors": []map[string]interface{}{
			{"message": err.Error(), "extensions": map[string]string{"code": errorCode(err)}},
		},
	})
	if merr != nil {
		return
	}
	s.write(wsMessage{ID: id, Type: msgError, Payload: payload})
}

// rootField returns the single root field of a subscription operation
func rootField(definition *ast.OperationDefinition) (*ast.Field, error) {
	var fields []*ast.Field
	for _, selection := range definition.SelectionSet {
		if field, ok := selection.(*ast.Field); ok {
			fields = append(fields, field)
		}
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("subscription operations must select exactly one root field")
	}
	return fields[0], nil
}

// postIDArgument extracts the postId argument from the comment
// subscription field, resolving variable references against the
// request variables.
func postIDArgument(field *ast.Field, variables map[string]interface{}) (string, error) {
	for _, arg := range field.Arguments {
		if arg.Name.Value() != "postId" {
			continue
		}
		switch value := arg.Value.(type) {
		case ast.StringValue:
			return value.Value(), nil
		case ast.IntValue:
			return value.String(), nil
		case ast.Variable:
			raw, ok := variables[value.Name.Value()]
			if !ok {
				return "", fmt.Errorf("missing variable $%s", value.Name.Value())
			}
			switch v := raw.(type) {
			case string:
				return v, nil
			case float64:
				return fmt.Sprintf("%.0f", v), nil
			default:
				return "", fmt.Errorf("variable $%s must be an ID", value.Name.Value())
			}
		default:
			return "", fmt.Errorf("postId must be an ID value")
		}
	}
	return "", fmt.Errorf("postId argument is required")
}

func errorsMessage(errs artemis.Errors) string {
	if len(errs.Errors) == 0 {
		return "unknown error"
	}
	return errs.Errors[0].Message
}
