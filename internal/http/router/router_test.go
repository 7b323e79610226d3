package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"basegraph.app/assist/common/llm"
	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/http/handler"
	"basegraph.app/assist/internal/http/middleware"
	"basegraph.app/assist/internal/http/router"
	"basegraph.app/assist/internal/service"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type scriptedClient struct {
	reply string
	err   error
}

func (s *scriptedClient) Generate(context.Context, llm.TextRequest) (*llm.TextResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.TextResponse{Content: s.reply}, nil
}

func (s *scriptedClient) Model() string {
	return "scripted"
}

var _ = Describe("SetupRoutes", func() {
	var (
		client *scriptedClient
		engine *gin.Engine
	)

	BeforeEach(func() {
		client = &scriptedClient{}
		services := service.NewServices(service.ServicesConfig{
			Dispatcher: assistant.NewDispatcher(client, assistant.Options{}),
		})

		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.RequestID())
		router.SetupRoutes(engine, services, router.RouterConfig{TraceHeaderName: "X-Trace-Id"})
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("serves health", func() {
		w := get("/health")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})

	DescribeTable("answers each feature on both paths",
		func(path, body, reply, expected string) {
			client.reply = reply

			w := post(path, body)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(expected))
			Expect(w.Header().Get(handler.SourceHeader)).To(Equal("live"))
			Expect(w.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
		},
		Entry("analyze", "/api/ai/assistant",
			`{"feature":"analyze","input":"Build login page"}`,
			`Here: [{"title":"Form","estimated_hours":3}]`,
			`{"subtasks":[{"title":"Form","estimated_hours":3}]}`),
		Entry("predict", "/api/v1/assistant",
			`{"feature":"predict","input":"Build login page"}`,
			"Roughly 16 hours.",
			`{"hours":16}`),
		Entry("bottleneck", "/api/ai/assistant",
			`{"feature":"bottleneck","input":"Build login page"}`,
			`{"bottlenecks":[]}`,
			`{"bottlenecks":[]}`),
		Entry("assign", "/api/v1/assistant",
			`{"feature":"assign","input":"Design the dashboard"}`,
			"Andre Saputra",
			`{"assignee":"Andre Saputra"}`),
	)

	It("serves fallbacks when the model is down", func() {
		client.err = errors.New("connection refused")

		w := post("/api/ai/assistant", `{"feature":"bottleneck","input":"Build login page"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"bottlenecks":[]}`))
		Expect(w.Header().Get(handler.SourceHeader)).To(Equal("fallback"))
	})

	It("rejects unknown features", func() {
		w := post("/api/ai/assistant", `{"feature":"unknown_value","input":"anything"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"Unknown feature"}`))
	})

	It("reports history as disabled without a database", func() {
		w := get("/api/v1/assistant/invocations")

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("reports a single invocation as unavailable without a database", func() {
		w := get("/api/v1/assistant/invocations/123")

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("reports the stream as disabled without redis", func() {
		w := get("/api/v1/assistant/invocations/stream")

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
