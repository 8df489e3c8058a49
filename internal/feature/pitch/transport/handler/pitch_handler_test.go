package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitch_backend/internal/api"
	analyzerentity "pitch_backend/internal/feature/analyzer/domain/entity"
	analyzerusecase "pitch_backend/internal/feature/analyzer/usecase"
	"pitch_backend/internal/feature/pitch/domain/entity"
	"pitch_backend/internal/feature/pitch/usecase"
	profileentity "pitch_backend/internal/feature/profile/domain/entity"
	jwtmw "pitch_backend/internal/platform/jwt"
)

// mockPitchUsecase is a mock implementation of PitchUsecase.
type mockPitchUsecase struct {
	UploadFunc        func(ctx context.Context, caller entity.Caller, startupID uuid.UUID, file usecase.UploadFile, meta entity.UploadMeta) (*entity.PitchAnalysis, error)
	RetryFunc         func(ctx context.Context, caller entity.Caller, pitchID uuid.UUID) (*entity.PitchAnalysis, error)
	GetFunc           func(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error)
	ListByStartupFunc func(ctx context.Context, caller entity.Caller, startupID uuid.UUID) ([]entity.PitchAnalysis, error)
	ListCompletedFunc func(ctx context.Context, caller entity.Caller) ([]entity.PitchWithStartup, error)
}

func (m *mockPitchUsecase) Upload(ctx context.Context, caller entity.Caller, startupID uuid.UUID, file usecase.UploadFile, meta entity.UploadMeta) (*entity.PitchAnalysis, error) {
	return m.UploadFunc(ctx, caller, startupID, file, meta)
}

func (m *mockPitchUsecase) Retry(ctx context.Context, caller entity.Caller, pitchID uuid.UUID) (*entity.PitchAnalysis, error) {
	return m.RetryFunc(ctx, caller, pitchID)
}

func (m *mockPitchUsecase) Get(ctx context.Context, caller entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error) {
	return m.GetFunc(ctx, caller, id)
}

func (m *mockPitchUsecase) ListByStartup(ctx context.Context, caller entity.Caller, startupID uuid.UUID) ([]entity.PitchAnalysis, error) {
	return m.ListByStartupFunc(ctx, caller, startupID)
}

func (m *mockPitchUsecase) ListCompleted(ctx context.Context, caller entity.Caller) ([]entity.PitchWithStartup, error) {
	return m.ListCompletedFunc(ctx, caller)
}

func newRouter(h *PitchHandler, userID uuid.UUID, role profileentity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, userID)
		c.Set(jwtmw.ContextRole, string(role))
		c.Next()
	})
	router.POST("/startups/:id/pitches", h.Upload)
	router.GET("/startups/:id/pitches", h.ListByStartup)
	router.GET("/pitches", h.ListCompleted)
	router.GET("/pitches/:id", h.Get)
	router.POST("/pitches/:id/retry", h.Retry)
	return router
}

func uploadRequest(t *testing.T, path string, fileName string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func completedPitch(startupID uuid.UUID) *entity.PitchAnalysis {
	p := entity.NewPitchAnalysis(startupID, "deck.txt", "u/s/1-deck.txt", usecase.ContentTypeText,
		entity.UploadMeta{Title: "Seed deck"}, time.Now())
	_ = p.StartProcessing()
	_ = p.Complete(analyzerusecase.FallbackResult())
	return p
}

func TestPitchHandler_Upload(t *testing.T) {
	userID := uuid.New()
	startupID := uuid.New()
	fields := map[string]string{
		"title":           "Seed deck",
		"description":     "Electrifying last mile delivery",
		"category":        "CleanTech",
		"required_amount": "$2M",
	}

	tests := []struct {
		name       string
		uploadErr  error
		failed     bool
		wantStatus int
		wantError  string
	}{
		{name: "completed", wantStatus: http.StatusCreated},
		{name: "invalid upload", uploadErr: fmt.Errorf("%w: unsupported file type", usecase.ErrInvalidUpload), wantStatus: http.StatusBadRequest},
		{name: "not owner", uploadErr: usecase.ErrForbidden, wantStatus: http.StatusForbidden, wantError: "forbidden"},
		{name: "startup missing", uploadErr: usecase.ErrStartupNotFound, wantStatus: http.StatusNotFound, wantError: "startup not found"},
		{
			name:       "rate limited",
			uploadErr:  fmt.Errorf("%w: %w", usecase.ErrAnalysisFailed, analyzerusecase.ErrRateLimited),
			failed:     true,
			wantStatus: http.StatusTooManyRequests,
			wantError:  "Rate limit exceeded. Please try again later.",
		},
		{
			name:       "payment required",
			uploadErr:  fmt.Errorf("%w: %w", usecase.ErrAnalysisFailed, analyzerusecase.ErrPaymentRequired),
			failed:     true,
			wantStatus: http.StatusPaymentRequired,
			wantError:  "Payment required. Please add credits to your workspace.",
		},
		{
			name:       "upstream failure",
			uploadErr:  fmt.Errorf("%w: %w", usecase.ErrAnalysisFailed, analyzerusecase.ErrUpstream),
			failed:     true,
			wantStatus: http.StatusBadGateway,
			wantError:  "Failed to analyze pitch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFile usecase.UploadFile
			var gotMeta entity.UploadMeta
			mock := &mockPitchUsecase{
				UploadFunc: func(_ context.Context, caller entity.Caller, sid uuid.UUID, file usecase.UploadFile, meta entity.UploadMeta) (*entity.PitchAnalysis, error) {
					assert.Equal(t, userID, caller.ID)
					assert.Equal(t, profileentity.RoleFounder, caller.Role)
					assert.Equal(t, startupID, sid)
					gotFile, gotMeta = file, meta
					if tt.failed {
						p := entity.NewPitchAnalysis(sid, file.Name, "k", usecase.ContentTypeText, meta, time.Now())
						_ = p.StartProcessing()
						_ = p.Fail("rate limit exceeded")
						return p, tt.uploadErr
					}
					if tt.uploadErr != nil {
						return nil, tt.uploadErr
					}
					return completedPitch(sid), nil
				},
			}
			router := newRouter(NewPitchHandler(mock), userID, profileentity.RoleFounder)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, uploadRequest(t, "/startups/"+startupID.String()+"/pitches", "deck.txt", []byte("We build drones."), fields))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "deck.txt", gotFile.Name)
			assert.Equal(t, []byte("We build drones."), gotFile.Data)
			assert.Equal(t, "$2M", gotMeta.RequiredAmount)
			assert.Equal(t, "Electrifying last mile delivery", gotMeta.Description)

			if tt.wantStatus == http.StatusCreated {
				var resp api.PitchAnalysisResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "completed", resp.AnalysisStatus)
				require.NotNil(t, resp.OverallScore)
				assert.Equal(t, 67, *resp.OverallScore)
				require.NotNil(t, resp.Source)
				assert.Equal(t, "fallback", *resp.Source)
				return
			}
			if tt.failed {
				var resp api.PitchFailureResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantError, resp.Error)
				require.NotNil(t, resp.Analysis)
				assert.Equal(t, "failed", resp.Analysis.AnalysisStatus)
				assert.Nil(t, resp.Analysis.OverallScore)
				return
			}
			if tt.wantError != "" {
				var resp api.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func TestPitchHandler_Upload_BadRequests(t *testing.T) {
	mock := &mockPitchUsecase{
		UploadFunc: func(context.Context, entity.Caller, uuid.UUID, usecase.UploadFile, entity.UploadMeta) (*entity.PitchAnalysis, error) {
			t.Fatal("usecase must not be called")
			return nil, nil
		},
	}
	router := newRouter(NewPitchHandler(mock), uuid.New(), profileentity.RoleFounder)

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/startups/"+uuid.NewString()+"/pitches", "", nil, map[string]string{"title": "x"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid startup id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/startups/not-a-uuid/pitches", "deck.txt", []byte("x"), nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPitchHandler_Retry(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"limit reached", fmt.Errorf("%w: 3 attempts used", usecase.ErrNotRetryable), http.StatusConflict},
		{"in flight", usecase.ErrConcurrentUpdate, http.StatusConflict},
		{"not found", usecase.ErrPitchNotFound, http.StatusNotFound},
		{"extraction", fmt.Errorf("%w: corrupt", usecase.ErrExtractionFailed), http.StatusUnprocessableEntity},
		{"internal", fmt.Errorf("load pitch file: boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPitchUsecase{
				RetryFunc: func(_ context.Context, _ entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return completedPitch(uuid.New()), nil
				},
			}
			router := newRouter(NewPitchHandler(mock), uuid.New(), profileentity.RoleFounder)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pitches/"+uuid.NewString()+"/retry", nil))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestPitchHandler_Reads(t *testing.T) {
	startupID := uuid.New()
	investorID := uuid.New()
	pending := entity.NewPitchAnalysis(startupID, "deck.pdf", "k", usecase.ContentTypePDF, entity.UploadMeta{}, time.Now())
	done := completedPitch(startupID)

	mock := &mockPitchUsecase{
		GetFunc: func(_ context.Context, caller entity.Caller, id uuid.UUID) (*entity.PitchAnalysis, error) {
			assert.Equal(t, profileentity.RoleInvestor, caller.Role)
			if id == pending.ID {
				return pending, nil
			}
			return nil, usecase.ErrPitchNotFound
		},
		ListByStartupFunc: func(context.Context, entity.Caller, uuid.UUID) ([]entity.PitchAnalysis, error) {
			return []entity.PitchAnalysis{*done, *pending}, nil
		},
		ListCompletedFunc: func(context.Context, entity.Caller) ([]entity.PitchWithStartup, error) {
			return []entity.PitchWithStartup{{
				Pitch:   *done,
				Startup: entity.StartupSummary{ID: startupID, Name: "SkyVolt", Domain: "CleanTech", Stage: "Seed", Logo: "🚀"},
			}}, nil
		},
	}
	router := newRouter(NewPitchHandler(mock), investorID, profileentity.RoleInvestor)

	t.Run("pending renders null scores", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pitches/"+pending.ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, "pending", raw["analysis_status"])
		for _, key := range []string{"overall_score", "key_strengths", "investment_recommendation", "source"} {
			v, present := raw[key]
			assert.True(t, present, "%s must be present", key)
			assert.Nil(t, v, "%s must be null", key)
		}
	})

	t.Run("unknown pitch", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pitches/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("by startup", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/startups/"+startupID.String()+"/pitches", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp []api.PitchAnalysisResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Nil(t, resp[0].Startup)
	})

	t.Run("completed with startup summary", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pitches", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp []api.PitchAnalysisResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		require.NotNil(t, resp[0].Startup)
		assert.Equal(t, "SkyVolt", resp[0].Startup.Name)
		require.NotEmpty(t, resp[0].KeyStrengths)
		assert.Equal(t, "Innovative approach", resp[0].KeyStrengths[0])
		require.NotNil(t, resp[0].InvestmentRecommendation)
		assert.Equal(t, string(analyzerentity.RecommendationHold), *resp[0].InvestmentRecommendation)
	})
}
