package router_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/deppfellow/adboard/internal/database"
	"github.com/deppfellow/adboard/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgres runs the API against a real PostgreSQL container.
// Enable with ADBOARD_INTEGRATION=1.
func TestPostgres(t *testing.T) {
	cfg := testutil.StartPostgres(t)

	logger := zerolog.Nop()
	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Migrate(context.Background()), "migrations are idempotent")

	_, e := testutil.NewServer(t, cfg, db)

	t.Run("user lifecycle", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/user", `{"name":"alice","rating":10}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"user_id":1,"name":"alice","rating":10,"status":"added"}`, rec.Body.String())

		rec = do(t, e, http.MethodPost, "/user", `{"name":"alice"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"status":"error","message":"user already exists"}`, rec.Body.String())

		rec = do(t, e, http.MethodPatch, "/user/1", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":1,"name":"alice","rating":10,"status":"patched"}`, rec.Body.String())
	})

	t.Run("advertisement with owner", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/adv", `{"title":"Sale","description":"Big discount!","owner_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decode(t, do(t, e, http.MethodGet, "/adv/1", ""))
		assert.Equal(t, "alice", body["owner"])
		assert.NotEmpty(t, body["created_at"])
	})

	t.Run("missing owner", func(t *testing.T) {
		rec := do(t, e, http.MethodPost, "/adv", `{"title":"Sale","description":"Big discount!","owner_id":404}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"status":"error","message":"owner with such owner_id does not exist"}`, rec.Body.String())
	})

	t.Run("concurrent creates with one name", func(t *testing.T) {
		const workers = 8
		codes := make([]int, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				codes[i] = do(t, e, http.MethodPost, "/user", fmt.Sprintf(`{"name":"racer","rating":%d}`, i)).Code
			}(i)
		}
		wg.Wait()

		counts := map[int]int{}
		for _, code := range codes {
			counts[code]++
		}
		assert.Equal(t, map[int]int{http.StatusCreated: 1, http.StatusConflict: workers - 1}, counts)
	})

	t.Run("cascade", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do(t, e, http.MethodDelete, "/user/1", "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/adv/1", "").Code)
	})

	t.Run("status", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/status", "").Code)
	})
}
