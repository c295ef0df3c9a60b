package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"masjid/internal/lifecycle"
	mosquemodels "masjid/internal/mosque/models"
	"masjid/internal/submission/handler/mocks"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type SubmissionHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

var member = domain.Principal{UserID: 7, Role: domain.RoleAuthenticated}

func TestSubmissionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SubmissionHandlerSuite))
}

func (s *SubmissionHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithPrincipal(r.Context(), member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	h.Register(r)
	h.RegisterModeration(r)
	s.router = r
}

func (s *SubmissionHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func (s *SubmissionHandlerSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error"].(string)
	return code
}

func (s *SubmissionHandlerSuite) TestCreateSuggestion() {
	s.service.EXPECT().
		CreateSuggestion(gomock.Any(), member, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Principal, in models.SuggestionInput) (*models.Suggestion, error) {
			assert.Equal(s.T(), "جامع", in.ArabicName)
			assert.Equal(s.T(), map[string]any{"wudu": true}, in.Facilities)
			return &models.Suggestion{
				ID:      12,
				Details: mosquemodels.Details{ArabicName: in.ArabicName, Governorate: in.Governorate},
				Status:  lifecycle.StatusPendingApproval,
			}, nil
		})

	w := s.do(http.MethodPost, "/suggestions/mosques", map[string]any{
		"arabic_name": "جامع",
		"governorate": "Sfax",
		"facilities":  map[string]any{"wudu": true},
	})

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(float64(12), resp["id"])
	s.Equal("pending_approval", resp["status"])
}

func (s *SubmissionHandlerSuite) TestCreateSuggestionValidation() {
	w := s.do(http.MethodPost, "/suggestions/mosques", map[string]any{"arabic_name": "جامع"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(dErrors.CodeValidation), s.errorCode(w))

	w = s.do(http.MethodPost, "/suggestions/mosques", map[string]any{
		"arabic_name": "جامع", "governorate": "Sfax", "latitude": 123.0,
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/suggestions/mosques", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(dErrors.CodeBadRequest), s.errorCode(w))
}

func (s *SubmissionHandlerSuite) TestCreateEdit() {
	s.service.EXPECT().
		CreateEdit(gomock.Any(), member, domain.MosqueID(3), map[string]any{"address": "rue 5"}).
		Return(&models.Edit{ID: 40, MosqueID: 3, Status: lifecycle.StatusPendingApproval}, nil)

	w := s.do(http.MethodPost, "/suggestions/mosques/3/edits", map[string]any{"patch": map[string]any{"address": "rue 5"}})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/suggestions/mosques/3/edits", map[string]any{"address": "rue 5"})
	s.Equal(http.StatusBadRequest, w.Code, "the patch must be wrapped")

	w = s.do(http.MethodPost, "/suggestions/mosques/abc/edits", map[string]any{"patch": map[string]any{}})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *SubmissionHandlerSuite) TestConfirm() {
	mosqueID := domain.MosqueID(99)
	s.service.EXPECT().
		Confirm(gomock.Any(), member, models.KindNewEntry, int64(5)).
		Return(&models.Outcome{Kind: models.KindNewEntry, ID: 5, Status: lifecycle.StatusApproved, ConfirmationsCount: 3, Promoted: true, MosqueID: &mosqueID}, nil)

	w := s.do(http.MethodPost, "/suggestions/5/confirmations", nil)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(true, resp["promoted"])
	s.Equal(float64(99), resp["mosque_id"])
}

func (s *SubmissionHandlerSuite) TestConfirmDuplicateIsConflict() {
	s.service.EXPECT().
		Confirm(gomock.Any(), member, models.KindEdit, int64(8)).
		Return(nil, dErrors.New(dErrors.CodeDuplicateConfirmation, "you already confirmed this submission"))

	w := s.do(http.MethodPost, "/suggestions/edits/8/confirmations", nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(string(dErrors.CodeDuplicateConfirmation), s.errorCode(w))
}

func (s *SubmissionHandlerSuite) TestModerationRoutes() {
	s.service.EXPECT().
		Approve(gomock.Any(), member, models.KindEdit, int64(4)).
		Return(&models.Outcome{Kind: models.KindEdit, ID: 4, Status: lifecycle.StatusApproved}, nil)
	s.service.EXPECT().
		Reject(gomock.Any(), member, models.KindNewEntry, int64(6)).
		Return(nil, dErrors.New(dErrors.CodeConflict, "submission is already approved"))
	s.service.EXPECT().
		Delete(gomock.Any(), member, models.KindNewEntry, int64(6)).
		Return(nil)

	w := s.do(http.MethodPost, "/moderation/edits/4/approve", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/moderation/suggestions/6/reject", nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, "/moderation/suggestions/6", nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *SubmissionHandlerSuite) TestQueueStatusFilter() {
	s.service.EXPECT().
		SuggestionsByStatus(gomock.Any(), member, models.ListFilter{Status: lifecycle.StatusRejected, Limit: 10}).
		Return([]models.Suggestion{}, nil)

	w := s.do(http.MethodGet, "/moderation/suggestions?status=rejected&limit=10", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq("[]", w.Body.String())

	w = s.do(http.MethodGet, "/moderation/edits?status=bogus", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *SubmissionHandlerSuite) TestMyEditsPassesPaging() {
	s.service.EXPECT().
		MyEdits(gomock.Any(), member, models.ListFilter{Offset: 20}).
		Return(nil, dErrors.New(dErrors.CodeInternal, "boom"))

	w := s.do(http.MethodGet, "/me/edits?offset=20", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.NotContains(resp, "error_description")
}
