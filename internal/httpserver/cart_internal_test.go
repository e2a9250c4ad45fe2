package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/lucaria/internal/session"
)

type countingStore struct {
	session.Store
	saves, deletes int
}

func (s *countingStore) Save(ctx context.Context, id string, sess *session.Session) error {
	s.saves++
	return s.Store.Save(ctx, id, sess)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.deletes++
	return s.Store.Delete(ctx, id)
}

func TestSaveDropsEmptySession(t *testing.T) {
	store := &countingStore{Store: session.NewMemoryStore(time.Hour)}
	h := &CartHTTP{Store: store}
	id := session.NewID()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

	sess := &session.Session{Cart: []session.CartLine{{ProductID: 1, Quantity: 1}}}
	require.NoError(t, h.save(c, id, sess))
	assert.Equal(t, 1, store.saves)

	sess.Cart = nil
	require.NoError(t, h.save(c, id, sess))
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 1, store.deletes)

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
