package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hoops-server/internal/batch"
	"hoops-server/internal/shared/errors"
)

type fakeBatchReader struct {
	states map[string]*batch.State
}

func (f *fakeBatchReader) Status(batchID string) (*batch.State, error) {
	if s, ok := f.states[batchID]; ok {
		return s, nil
	}
	return nil, errors.NotFoundf("batch %s not found", batchID)
}

func (f *fakeBatchReader) Results(batchID string, since int) ([]batch.GameOutcome, error) {
	return nil, errors.NotFoundf("batch %s not found", batchID)
}

func (f *fakeBatchReader) Cancel(batchID string) error {
	return errors.NotFoundf("batch %s not found", batchID)
}

type fakeProgressReader struct {
	snapshots map[string]*batch.ProgressSnapshot
}

func (f *fakeProgressReader) ReadProgress(ctx context.Context, batchID string) (*batch.ProgressSnapshot, error) {
	return f.snapshots[batchID], nil
}

func statusRequest(batchID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/batches/"+batchID, nil)
	req.SetPathValue("id", batchID)
	return req
}

func TestStatusFromRegistry(t *testing.T) {
	reader := &fakeBatchReader{states: map[string]*batch.State{
		"abc": {ID: "abc", Status: batch.StatusRunning, Progress: batch.Progress{Pending: 2, Total: 2}},
	}}
	handler := NewBatchHandler(reader, &fakeProgressReader{})

	rec := httptest.NewRecorder()
	handler.Status(rec, statusRequest("abc"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var state batch.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.ID != "abc" || state.Status != batch.StatusRunning {
		t.Errorf("state = %+v", state)
	}
}

func TestStatusFallsBackToMirroredSnapshot(t *testing.T) {
	// The registry is empty after a restart; the mirrored snapshot of a
	// finished batch still answers the poll.
	mirror := &fakeProgressReader{snapshots: map[string]*batch.ProgressSnapshot{
		"abc": {
			BatchID:  "abc",
			Status:   batch.StatusCompleted,
			Progress: batch.Progress{Completed: 5, Total: 5},
		},
	}}
	handler := NewBatchHandler(&fakeBatchReader{}, mirror)

	rec := httptest.NewRecorder()
	handler.Status(rec, statusRequest("abc"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var state batch.State
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Status != batch.StatusCompleted || state.Progress.Completed != 5 {
		t.Errorf("state = %+v", state)
	}
}

func TestStatusUnknownBatchIsNotFound(t *testing.T) {
	handler := NewBatchHandler(&fakeBatchReader{}, &fakeProgressReader{})

	rec := httptest.NewRecorder()
	handler.Status(rec, statusRequest("nope"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rec.Code)
	}
}
