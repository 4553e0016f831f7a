package service

import (
	"context"
	"sync"

	"doc-assistant-gw/internal/config"
	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/internal/entity"
	"doc-assistant-gw/internal/mapper"
	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/internal/repository/memory"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/regen"
	"doc-assistant-gw/pkg/scope"
	"doc-assistant-gw/pkg/session"
)

type IAssistantService interface {
	Query(ctx context.Context, sc session.Context, req *dto.QueryRequest) (*dto.QueryAcceptedResponse, error)
	CancelQuery(sc session.Context)
	SessionState(sc session.Context) *dto.SessionStateResponse

	History(sc session.Context) *dto.ConversationResponse
	NewConversation(sc session.Context) error
	Conversations(sc session.Context) []dto.CatalogEntryResponse
	SelectConversation(ctx context.Context, sc session.Context, id string) (*dto.ConversationResponse, error)
	DeleteConversation(sc session.Context, id string)

	Feedback(ctx context.Context, sc session.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)

	GetScope(sc session.Context) *dto.ScopeResponse
	ToggleScope(sc session.Context, req *dto.ToggleScopeRequest) (*dto.ToggleScopeResponse, error)
	RemoveScopeDocument(sc session.Context, documentId string)
	ClearScope(sc session.Context)
}

type assistantService struct {
	cfg        *config.Config
	transport  session.Transport
	scopeStore scope.RemoteStore
	repo       *memory.AssistantRepository
	publisher  IPublisherService
	eventPub   regen.EventPublisher // may be nil when NATS is unavailable
	mapper     *mapper.ChatMapper
	logger     logger.ILogger

	mu sync.Mutex // guards lazy assistant creation
}

func NewAssistantService(
	cfg *config.Config,
	transport session.Transport,
	scopeStore scope.RemoteStore,
	repo *memory.AssistantRepository,
	publisher IPublisherService,
	eventPub regen.EventPublisher,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		cfg:        cfg,
		transport:  transport,
		scopeStore: scopeStore,
		repo:       repo,
		publisher:  publisher,
		eventPub:   eventPub,
		mapper:     mapper.NewChatMapper(),
		logger:     log,
	}
}

// assistant returns the user's aggregate, building it on first use.
func (s *assistantService) assistant(sc session.Context) *entity.Assistant {
	if a, found := s.repo.Get(sc.UserId); found {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, found := s.repo.Get(sc.UserId); found {
		return a
	}

	fetcher := conversation.NewHTTPFetcher(s.cfg.Upstream.QABaseURL, sc.Token)
	store := conversation.NewStore(fetcher)

	listener := newStreamListener(sc.UserId, s.publisher, s.eventPub, s.mapper, s.logger)
	machine := session.NewMachine(s.transport, store, listener, s.logger)

	creds := scope.Credentials{Owner: sc.UserId, Token: sc.Token}
	scopeMgr := scope.NewManager(creds, s.scopeStore, s.cfg.Chat.MaxSelection, s.logger)
	// Best effort restore of the persisted selection; failures leave an
	// empty scope
	go scopeMgr.Restore(context.Background())

	a := &entity.Assistant{
		Ctx:      sc,
		Machine:  machine,
		Store:    store,
		Scope:    scopeMgr,
		Feedback: regen.NewController(machine, store, scopeMgr, s.eventPub, s.logger),
	}
	s.repo.Save(sc.UserId, a)

	s.logger.Info("Assistant", "Assistant created", map[string]interface{}{"user_id": sc.UserId})
	return a
}

func (s *assistantService) Query(ctx context.Context, sc session.Context, req *dto.QueryRequest) (*dto.QueryAcceptedResponse, error) {
	a := s.assistant(sc)

	model := req.Model
	if model == "" {
		model = s.cfg.Chat.DefaultModel
	}

	q := session.Query{
		Text:  req.Message,
		Scope: a.Scope.Selection(),
		Mode:  session.SearchMode(req.SearchMode),
		Model: model,
	}

	// The stream outlives the HTTP request that started it, so it must not
	// inherit the request context
	if err := a.Machine.Submit(context.Background(), sc, q); err != nil {
		return nil, err
	}

	return &dto.QueryAcceptedResponse{State: string(a.Machine.State())}, nil
}

func (s *assistantService) CancelQuery(sc session.Context) {
	a := s.assistant(sc)
	a.Machine.Cancel()
}

func (s *assistantService) SessionState(sc session.Context) *dto.SessionStateResponse {
	a := s.assistant(sc)
	return &dto.SessionStateResponse{
		State:       string(a.Machine.State()),
		LastOutcome: string(a.Machine.LastOutcome()),
	}
}

func (s *assistantService) History(sc session.Context) *dto.ConversationResponse {
	a := s.assistant(sc)
	return &dto.ConversationResponse{
		ConversationId: a.Store.ConversationId(),
		Messages:       s.mapper.MessagesToResponse(a.Store.Messages()),
	}
}

func (s *assistantService) NewConversation(sc session.Context) error {
	a := s.assistant(sc)
	if a.Machine.State() != session.StateIdle {
		return session.ErrSessionBusy
	}
	a.Store.StartNew()
	return nil
}

func (s *assistantService) Conversations(sc session.Context) []dto.CatalogEntryResponse {
	a := s.assistant(sc)
	return s.mapper.CatalogToResponse(a.Store.Catalog())
}

func (s *assistantService) SelectConversation(ctx context.Context, sc session.Context, id string) (*dto.ConversationResponse, error) {
	a := s.assistant(sc)
	if a.Machine.State() != session.StateIdle {
		return nil, session.ErrSessionBusy
	}
	if err := a.Store.Select(ctx, id); err != nil {
		return nil, err
	}
	return s.History(sc), nil
}

func (s *assistantService) DeleteConversation(sc session.Context, id string) {
	a := s.assistant(sc)
	a.Store.Delete(id)
}

func (s *assistantService) Feedback(ctx context.Context, sc session.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	a := s.assistant(sc)

	fb := regen.Feedback{
		MessageId: req.MessageId,
		Positive:  req.Positive,
		Reason:    regen.FeedbackReason(req.Reason),
	}

	// Same as Query: a triggered regeneration streams past this request
	regenerated, err := a.Feedback.HandleFeedback(context.Background(), sc, fb)
	if err != nil {
		return nil, err
	}

	res := &dto.FeedbackResponse{Regenerated: regenerated}
	if regenerated {
		if mode, ok := regen.RecommendedMode(fb.Reason); ok {
			res.SearchMode = string(mode)
		}
	}
	return res, nil
}

func (s *assistantService) GetScope(sc session.Context) *dto.ScopeResponse {
	a := s.assistant(sc)
	return &dto.ScopeResponse{
		DocumentIds: a.Scope.Selection(),
		MaxSize:     a.Scope.MaxSize(),
	}
}

func (s *assistantService) ToggleScope(sc session.Context, req *dto.ToggleScopeRequest) (*dto.ToggleScopeResponse, error) {
	a := s.assistant(sc)
	selected, err := a.Scope.Toggle(req.DocumentId)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleScopeResponse{
		DocumentId: req.DocumentId,
		Selected:   selected,
	}, nil
}

func (s *assistantService) RemoveScopeDocument(sc session.Context, documentId string) {
	a := s.assistant(sc)
	a.Scope.Remove(documentId)
}

func (s *assistantService) ClearScope(sc session.Context) {
	a := s.assistant(sc)
	a.Scope.Clear()
}
