// Package chat answers questions against the document index and keeps the
// transcript of each conversation.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/clusterscope/internal/llm"
	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/session"
	"github.com/dgallion1/clusterscope/internal/vectorindex"
)

// Searcher retrieves context and sources for a query.
type Searcher interface {
	Search(ctx context.Context, q vectorindex.Query) (string, []model.Source, error)
}

type Request struct {
	SessionID string
	Message   string
	Industry  string
	Region    string
	TopK      int
}

type Response struct {
	SessionID string         `json:"session_id"`
	Reply     string         `json:"reply"`
	Sources   []model.Source `json:"sources"`
}

type Service struct {
	search        Searcher
	client        llm.Client
	sessions      *session.Store
	historyBudget int
	log           *slog.Logger
}

func NewService(search Searcher, client llm.Client, sessions *session.Store, historyBudget int, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		search:        search,
		client:        client,
		sessions:      sessions,
		historyBudget: historyBudget,
		log:           log,
	}
}

// Ask answers req.Message. Without a session id a new session is started
// with the request's filters as its defaults. The transcript only grows when
// the model answers.
func (s *Service) Ask(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return Response{}, fmt.Errorf("empty message")
	}

	var sess session.Session
	var err error
	if req.SessionID == "" {
		sess, err = s.sessions.Create(ctx, req.Industry, req.Region)
	} else {
		sess, err = s.sessions.Get(ctx, req.SessionID)
	}
	if err != nil {
		return Response{}, err
	}

	q := vectorindex.Query{
		Text:     question,
		Industry: firstNonEmpty(req.Industry, sess.Industry),
		Region:   firstNonEmpty(req.Region, sess.Region),
		TopK:     req.TopK,
	}
	contextText, sources, err := s.search.Search(ctx, q)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	history := llm.TrimHistory(sess.Messages, s.historyBudget)
	messages := llm.BuildChatMessages(history, contextText, question)

	reply, err := s.client.Complete(ctx, messages, llm.Options{})
	if err != nil {
		return Response{}, fmt.Errorf("%s completion: %w", s.client.Name(), err)
	}

	if _, err := s.sessions.Append(ctx, sess.ID,
		model.Message{Role: model.RoleUser, Content: question},
		model.Message{Role: model.RoleAssistant, Content: reply},
	); err != nil {
		return Response{}, err
	}

	s.log.Info("chat answered", "session_id", sess.ID, "sources", len(sources), "history", len(history))
	if sources == nil {
		sources = []model.Source{}
	}
	return Response{SessionID: sess.ID, Reply: reply, Sources: sources}, nil
}

// Transcript returns the stored messages of a session.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]model.Message, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
