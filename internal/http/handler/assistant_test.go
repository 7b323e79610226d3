package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/http/handler"
	"basegraph.app/assist/internal/model"
	"basegraph.app/assist/internal/service"
)

type mockAssistantService struct {
	runFn             func(ctx context.Context, req assistant.Request) (*assistant.Result, error)
	listInvocationsFn func(ctx context.Context, feature string, limit int32) ([]model.Invocation, error)
	getInvocationFn   func(ctx context.Context, id int64) (*model.Invocation, error)
}

func (m *mockAssistantService) Run(ctx context.Context, req assistant.Request) (*assistant.Result, error) {
	return m.runFn(ctx, req)
}

func (m *mockAssistantService) Features() []assistant.FeatureInfo {
	return assistant.Catalog()
}

func (m *mockAssistantService) ListInvocations(ctx context.Context, feature string, limit int32) ([]model.Invocation, error) {
	return m.listInvocationsFn(ctx, feature, limit)
}

func (m *mockAssistantService) GetInvocation(ctx context.Context, id int64) (*model.Invocation, error) {
	return m.getInvocationFn(ctx, id)
}

var _ = Describe("AssistantHandler", func() {
	var (
		svc    *mockAssistantService
		router *gin.Engine
		seen   assistant.Request
	)

	BeforeEach(func() {
		seen = assistant.Request{}
		svc = &mockAssistantService{
			runFn: func(_ context.Context, req assistant.Request) (*assistant.Result, error) {
				seen = req
				return &assistant.Result{
					Feature: req.Feature,
					Payload: assistant.PredictOutput{Hours: 8},
					Source:  assistant.SourceFallback,
				}, nil
			},
		}

		h := handler.NewAssistantHandler(svc, "X-Trace-Id")
		router = gin.New()
		router.POST("/assistant", h.Run)
		router.GET("/assistant/features", h.Features)
		router.GET("/assistant/invocations", h.ListInvocations)
		router.GET("/assistant/invocations/:id", h.GetInvocation)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/assistant", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	Describe("Run", func() {
		It("returns the payload with the source header", func() {
			w := post(`{"feature":"predict","input":"Payment gateway"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"hours":8}`))
			Expect(w.Header().Get(handler.SourceHeader)).To(Equal("fallback"))
			Expect(seen.Feature).To(Equal(assistant.FeaturePredict))
			Expect(seen.Input).To(Equal("Payment gateway"))
			Expect(seen.Context).To(BeNil())
		})

		It("maps caller context onto the request", func() {
			w := post(`{"feature":"assign","input":"Docs","context":{"priority":"high","subtask_count":4,"team":[{"name":"Dewi","role":"Writer","workload":2}]}}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen.Context).NotTo(BeNil())
			Expect(seen.Context.Priority).To(Equal("high"))
			Expect(*seen.Context.SubtaskCount).To(Equal(4))
			Expect(seen.Context.Team).To(Equal([]assistant.TeamMember{{Name: "Dewi", Role: "Writer", Workload: 2}}))
		})

		It("returns 400 for unknown features", func() {
			svc.runFn = func(_ context.Context, req assistant.Request) (*assistant.Result, error) {
				return nil, fmt.Errorf("%w: %q", assistant.ErrUnknownFeature, req.Feature)
			}

			w := post(`{"feature":"summarize","input":"anything"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Unknown feature"}`))
		})

		DescribeTable("returns 400 for unknown features whatever the input",
			func(body string) {
				w := post(body)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(w.Body.String()).To(MatchJSON(`{"error":"Unknown feature"}`))
			},
			Entry("numeric input", `{"feature":"unknown_value","input":42}`),
			Entry("object input", `{"feature":"unknown_value","input":{"a":1}}`),
			Entry("missing input", `{"feature":"unknown_value"}`),
			Entry("missing feature", `{"input":"Build login page"}`),
			Entry("non-string feature", `{"feature":7,"input":"x"}`),
			Entry("unknown feature with invalid context", `{"feature":"unknown_value","input":"x","context":{"subtask_count":-1}}`),
		)

		It("does not call the service for unknown features", func() {
			called := false
			svc.runFn = func(context.Context, assistant.Request) (*assistant.Result, error) {
				called = true
				return nil, nil
			}

			post(`{"feature":"unknown_value","input":42}`)

			Expect(called).To(BeFalse())
		})

		It("returns 500 for a body that is not JSON", func() {
			w := post(`feature=analyze`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Internal server error"}`))
		})

		DescribeTable("renders non-string input as prompt text",
			func(body, expected string) {
				w := post(body)

				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(seen.Input).To(Equal(expected))
			},
			Entry("number", `{"feature":"predict","input":42}`, "42"),
			Entry("object", `{"feature":"predict","input":{ "a": 1 }}`, `{"a":1}`),
			Entry("null", `{"feature":"predict","input":null}`, ""),
			Entry("missing", `{"feature":"predict"}`, ""),
		)

		It("accepts any priority value", func() {
			w := post(`{"feature":"predict","input":"x","context":{"priority":"critical"}}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen.Context.Priority).To(Equal("critical"))
		})

		It("returns 400 for context that fails validation", func() {
			w := post(`{"feature":"predict","input":"x","context":{"subtask_count":-1}}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Invalid request body"}`))
		})

		It("returns 400 for context of the wrong shape", func() {
			w := post(`{"feature":"assign","input":"x","context":{"team":"everyone"}}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Invalid request body"}`))
		})

		It("hides internal errors", func() {
			svc.runFn = func(context.Context, assistant.Request) (*assistant.Result, error) {
				return nil, errors.New("dispatching assistant request: pq: secret detail")
			}

			w := post(`{"feature":"analyze","input":"Build login page"}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Internal server error"}`))
		})
	})

	Describe("Features", func() {
		It("lists the catalog", func() {
			w := get("/assistant/features")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body struct {
				Features []struct {
					ID           string         `json:"id"`
					Title        string         `json:"title"`
					OutputSchema map[string]any `json:"output_schema"`
				} `json:"features"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Features).To(HaveLen(4))
			Expect(body.Features[0].ID).To(Equal("analyze"))
			Expect(body.Features[0].Title).To(Equal("Task Analyzer"))
			Expect(body.Features[0].OutputSchema).NotTo(BeEmpty())
		})
	})

	Describe("ListInvocations", func() {
		It("returns recent invocations", func() {
			reason := "no number in completion"
			svc.listInvocationsFn = func(_ context.Context, feature string, limit int32) ([]model.Invocation, error) {
				Expect(feature).To(Equal("predict"))
				Expect(limit).To(Equal(int32(5)))
				return []model.Invocation{{
					ID:             1234567890123,
					Feature:        "predict",
					Source:         model.InvocationSourceFallback,
					FallbackReason: &reason,
					OutputJSON:     []byte(`{"hours":8}`),
					CreatedAt:      time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
				}}, nil
			}

			w := get("/assistant/invocations?feature=predict&limit=5")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body map[string][]map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body["invocations"]).To(HaveLen(1))
			inv := body["invocations"][0]
			Expect(inv).To(HaveKeyWithValue("id", "1234567890123"))
			Expect(inv).To(HaveKeyWithValue("fallback_reason", reason))
			Expect(inv).To(HaveKeyWithValue("output", HaveKeyWithValue("hours", BeNumerically("==", 8))))
		})

		It("rejects a malformed limit", func() {
			w := get("/assistant/invocations?limit=ten")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 503 without a database", func() {
			svc.listInvocationsFn = func(context.Context, string, int32) ([]model.Invocation, error) {
				return nil, service.ErrHistoryDisabled
			}

			w := get("/assistant/invocations")

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Invocation history disabled"}`))
		})

		It("returns 400 for an unknown feature filter", func() {
			svc.listInvocationsFn = func(context.Context, string, int32) ([]model.Invocation, error) {
				return nil, assistant.ErrUnknownFeature
			}

			w := get("/assistant/invocations?feature=summarize")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Unknown feature"}`))
		})
	})

	Describe("GetInvocation", func() {
		It("returns one invocation", func() {
			svc.getInvocationFn = func(_ context.Context, id int64) (*model.Invocation, error) {
				Expect(id).To(Equal(int64(987654321)))
				return &model.Invocation{ID: id, Feature: "assign", Source: model.InvocationSourceLive, OutputJSON: []byte(`{"assignee":"Fito Ananda"}`)}, nil
			}

			w := get("/assistant/invocations/987654321")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("id", "987654321"))
			Expect(body).To(HaveKeyWithValue("output", HaveKeyWithValue("assignee", "Fito Ananda")))
		})

		It("rejects a non-numeric id", func() {
			w := get("/assistant/invocations/abc")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for a missing invocation", func() {
			svc.getInvocationFn = func(context.Context, int64) (*model.Invocation, error) {
				return nil, service.ErrInvocationNotFound
			}

			w := get("/assistant/invocations/1")

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Invocation not found"}`))
		})

		It("returns 503 without a database", func() {
			svc.getInvocationFn = func(context.Context, int64) (*model.Invocation, error) {
				return nil, service.ErrHistoryDisabled
			}

			Expect(get("/assistant/invocations/1").Code).To(Equal(http.StatusServiceUnavailable))
		})
	})
})

var _ = Describe("InvocationStreamHandler", func() {
	It("returns 503 when the stream is disabled", func() {
		router := gin.New()
		router.GET("/stream", handler.NewInvocationStreamHandler(nil, "assistant_invocations").Stream)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
