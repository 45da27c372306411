package assistant

//go:generate mockgen -source=llm/llm.go -destination=llm/mocks/mocks.go -package=mocks Model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"costumedesk/internal/assistant/llm"
	"costumedesk/internal/assistant/llm/mocks"
	"costumedesk/internal/assistant/memory"
	"costumedesk/internal/assistant/toolkit"
	"costumedesk/internal/costume/models"
	"costumedesk/internal/costume/service"
	"costumedesk/internal/costume/store"
	costumetools "costumedesk/internal/costume/tools"
	"costumedesk/internal/platform/metrics"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/circuit"
)

type EngineSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	model   *mocks.MockModel
	memory  *memory.InMemory
	metrics *metrics.Metrics
	ctx     context.Context
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.model = mocks.NewMockModel(s.ctrl)
	s.model.EXPECT().Name().Return("fake-model").AnyTimes()
	s.memory = memory.NewInMemory(20, time.Hour)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ctx = context.Background()
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) costumeEngine(opts ...Option) *Engine {
	st := store.NewInMemory()
	rec, err := models.NewRecord("C-100", "Vampire Cape", "classic", 5, 99, models.Owner{FirstName: "Jane", LastName: "Doe"})
	s.Require().NoError(err)
	s.Require().NoError(st.Save(s.ctx, rec))

	base := []Option{
		WithSystemPrompt(CostumeSupportPrompt),
		WithTools(costumetools.New(service.New(st))...),
		WithMemory(s.memory),
		WithMetrics(s.metrics),
	}
	return NewEngine(NameCostumeSupport, s.model, append(base, opts...)...)
}

func (s *EngineSuite) TestPlainAnswerIsRemembered() {
	engine := s.costumeEngine()
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		s.Equal(CostumeSupportPrompt, req.SystemPrompt)
		s.Len(req.Tools, 2)
		s.Equal([]llm.Message{llm.UserText("hi")}, req.Messages)
		return &llm.Response{Text: "Hello! Which costume?"}, nil
	})

	answer, err := engine.Turn(s.ctx, "session-1", "hi")
	s.Require().NoError(err)
	s.Equal("Hello! Which costume?", answer)

	history, err := s.memory.Load(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal([]llm.Message{llm.UserText("hi"), llm.ModelText("Hello! Which costume?")}, history)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ChatMessages.WithLabelValues(NameCostumeSupport)))
}

func (s *EngineSuite) TestToolCallRoundTrip() {
	engine := s.costumeEngine()
	gomock.InOrder(
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Response{ToolCalls: []llm.ToolCall{{
			ID: "call-1", Name: costumetools.GetCostumeDetailsName,
			Args: map[string]any{"id": "C-100", "ownerFirstName": "jane", "ownerLastName": "DOE"},
		}}}, nil),
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			s.Require().Len(req.Messages, 3)
			results := req.Messages[2].ToolResults
			s.Require().Len(results, 1)
			s.Equal("call-1", results[0].ID)
			s.Equal("Vampire Cape", results[0].Response["name"])
			return &llm.Response{Text: "Your costume is the Vampire Cape."}, nil
		}),
	)

	answer, err := engine.Turn(s.ctx, "session-2", "details for C-100, Jane Doe")
	s.Require().NoError(err)
	s.Equal("Your costume is the Vampire Cape.", answer)

	history, _ := s.memory.Load(s.ctx, "session-2")
	s.Len(history, 2)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ToolCalls.WithLabelValues(costumetools.GetCostumeDetailsName, metrics.OutcomeSuccess)))
}

func (s *EngineSuite) TestToolErrorsAreReportedToTheModel() {
	engine := s.costumeEngine()
	gomock.InOrder(
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Response{ToolCalls: []llm.ToolCall{
			{Name: costumetools.RemoveCostumeName, Args: map[string]any{"id": "C-100", "ownerFirstName": "John", "ownerLastName": "Doe"}},
			{Name: costumetools.GetCostumeDetailsName, Args: map[string]any{"id": 100, "ownerFirstName": "Jane", "ownerLastName": "Doe"}},
			{Name: "dropTables", Args: map[string]any{}},
		}}, nil),
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			results := req.Messages[len(req.Messages)-1].ToolResults
			s.Require().Len(results, 3)
			s.Equal("Costume C-100 not found", results[0].Response["error"])
			s.Contains(results[1].Response["error"], "must be a string")
			s.Contains(results[2].Response["error"], "unknown tool")
			return &llm.Response{Text: "I could not find that costume."}, nil
		}),
	)

	_, err := engine.Turn(s.ctx, "session-3", "remove C-100 for John Doe")
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ToolCalls.WithLabelValues(costumetools.RemoveCostumeName, metrics.OutcomeNotFound)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ToolCalls.WithLabelValues(costumetools.GetCostumeDetailsName, metrics.OutcomeInvalid)))
}

func (s *EngineSuite) TestToolLoopIsBounded() {
	engine := s.costumeEngine(WithMaxToolRounds(2))
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Response{ToolCalls: []llm.ToolCall{{
		Name: costumetools.GetCostumeDetailsName, Args: map[string]any{"id": "C-1", "ownerFirstName": "a", "ownerLastName": "b"},
	}}}, nil).Times(3)

	_, err := engine.Turn(s.ctx, "session-4", "loop forever")
	s.ErrorIs(err, ErrToolLoop)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	history, _ := s.memory.Load(s.ctx, "session-4")
	s.Empty(history)
}

func (s *EngineSuite) TestInvalidMessagesNeverReachTheModel() {
	engine := s.costumeEngine()

	for _, msg := range []string{"", "   ", string(make([]rune, 4001))} {
		_, err := engine.Turn(s.ctx, "session-5", msg)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "message %q", msg)
	}
}

func (s *EngineSuite) TestBreakerOpensAfterFailures() {
	breaker := circuit.New("gemini", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	engine := s.costumeEngine(WithBreaker(breaker))
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, errors.New("503 from provider")).Times(2)

	for range 2 {
		_, err := engine.Turn(s.ctx, "session-6", "hello")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	}

	_, err := engine.Turn(s.ctx, "session-6", "hello")
	s.ErrorIs(err, circuit.ErrOpen)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.ModelFailures.WithLabelValues(NameCostumeSupport)))
}

func (s *EngineSuite) TestDeadlineBecomesTimeout() {
	engine := s.costumeEngine()
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	_, err := engine.Turn(s.ctx, "session-7", "hello")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *EngineSuite) TestMemoryChatIsolatesConversations() {
	chat := NewMemoryChat(NewEngine(NameMemoryChat, s.model, WithMemory(s.memory)))
	echo := func(_ context.Context, req llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "echo: " + req.Messages[len(req.Messages)-1].Text}, nil
	}
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(echo).Times(2)

	_, err := chat.Chat(s.ctx, "1", "Hello, my name is Pete and my Halloween costume is Santa Claus")
	s.Require().NoError(err)
	_, err = chat.Chat(s.ctx, "2", "Hi, I'm Jeremy and my Halloween costume is a rock and roll star")
	s.Require().NoError(err)

	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		s.Require().Len(req.Messages, 3)
		s.Contains(req.Messages[0].Text, "Jeremy")
		return &llm.Response{Text: "Your name is Jeremy."}, nil
	})
	answer, err := chat.Chat(s.ctx, "2", "What is my name?")
	s.Require().NoError(err)
	s.Equal("Your name is Jeremy.", answer)

	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		s.Len(req.Messages, 1)
		return echo(context.Background(), req)
	})
	_, err = chat.Chat(s.ctx, "3", "a fresh conversation")
	s.Require().NoError(err)

	_, err = chat.Chat(s.ctx, "", "no id")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

type recordingTool struct {
	calls []toolkit.Args
}

func (r *recordingTool) Definition() toolkit.Definition {
	return toolkit.Definition{Name: "sendEmail", Parameters: []toolkit.Parameter{{Name: "subject"}, {Name: "body"}}}
}

func (r *recordingTool) Call(_ context.Context, args toolkit.Args) (toolkit.Result, error) {
	r.calls = append(r.calls, args)
	return toolkit.Result{"sent": true}, nil
}

func (s *EngineSuite) TestPoetWritesAndSends() {
	mail := &recordingTool{}
	poet := NewPoet(NewEngine(NamePoet, s.model, WithSystemPrompt(PoetPrompt), WithTools(mail)))

	gomock.InOrder(
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			s.Equal(PoetPrompt, req.SystemPrompt)
			s.Contains(req.Messages[0].Text, "Winnie the Pooh")
			s.Contains(req.Messages[0].Text, "4 lines long")
			return &llm.Response{ToolCalls: []llm.ToolCall{{Name: "sendEmail", Args: map[string]any{"subject": "Pooh", "body": "honey"}}}}, nil
		}),
		s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Response{Text: "Sent you a poem."}, nil),
	)

	answer, err := poet.WriteAPoem(s.ctx, "Winnie the Pooh", 4)
	s.Require().NoError(err)
	s.Equal("Sent you a poem.", answer)
	s.Require().Len(mail.calls, 1)
	s.Equal("honey", mail.calls[0]["body"])

	_, err = poet.WriteAPoem(s.ctx, "Winnie the Pooh", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *EngineSuite) TestHalloweenIsStateless() {
	h := NewHalloween(NewEngine(NameHalloween, s.model))
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		s.Len(req.Messages, 1)
		s.Empty(req.Tools)
		return &llm.Response{Text: "A pumpkin."}, nil
	}).Times(2)

	for range 2 {
		answer, err := h.Chat(s.ctx, "What should my halloween costume be?")
		s.Require().NoError(err)
		s.Equal("A pumpkin.", answer)
	}
}

func (s *EngineSuite) TestEndSessionForgetsHistory() {
	support := NewCostumeSupport(s.costumeEngine())
	s.model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(&llm.Response{Text: "ok"}, nil)

	_, err := support.Chat(s.ctx, "session-8", "hello")
	s.Require().NoError(err)
	s.Require().NoError(support.EndSession(s.ctx, "session-8"))

	history, _ := s.memory.Load(s.ctx, "session-8")
	s.Empty(history)
}
