package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/types"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteSuccessWrapsData(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteErrorMapsTypedErrors(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
		details bool
	}{
		{pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"field": "name"}), http.StatusBadRequest, "bad input", true},
		{pkgerrors.New(pkgerrors.CodeNotFound, "order not found"), http.StatusNotFound, "order not found", false},
		{pkgerrors.New(pkgerrors.CodeConflict, "slug already exists"), http.StatusConflict, "slug already exists", false},
		{pkgerrors.New(pkgerrors.CodeInvariant, "cannot create circular reference"), http.StatusUnprocessableEntity, "cannot create circular reference", false},
		{pkgerrors.New(pkgerrors.CodeInsufficient, "insufficient stock").WithDetails([]string{"line"}), http.StatusConflict, "insufficient stock", true},
		{pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "db: insert"), http.StatusServiceUnavailable, "dependency unavailable", false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, tc.err)

		require.Equal(t, tc.status, w.Code, tc.message)
		body := decodeError(t, w)
		require.Equal(t, tc.message, body.Error.Message)
		require.Equal(t, tc.details, body.Error.Details != nil, tc.message)
	}
}

func TestWriteErrorHidesUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	require.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	require.Equal(t, "internal server error", body.Error.Message)
}

func TestWriteErrorEchoesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Request-Id", "req-42")

	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))

	body := decodeError(t, w)
	require.Equal(t, "req-42", body.Error.RequestID)
}

func TestWriteErrorKeepsMessageForClientCodesOnly(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeInternal, "nil pointer in order mapper"))

	body := decodeError(t, w)
	require.Equal(t, "internal server error", body.Error.Message)
}

func TestWriteSuccessFallsBackOnEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]any{"bad": make(chan int)})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	require.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
}
