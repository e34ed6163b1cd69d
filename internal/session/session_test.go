package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func TestStoreCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 42, "user@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, uint(42), sess.UserID)
	assert.Equal(t, "user@example.com", sess.Email)

	got, err := store.Get(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestStoreGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "no-such-session")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreDestroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, "a@b.co")
	assert.NoError(t, err)

	assert.NoError(t, store.Destroy(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	// Destroying again, or destroying nil, is a no-op.
	assert.NoError(t, store.Destroy(ctx, sess))
	assert.NoError(t, store.Destroy(ctx, nil))
}

func TestStoreDestroyAllForUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, 7, "a@b.co")
	assert.NoError(t, err)
	second, err := store.Create(ctx, 7, "a@b.co")
	assert.NoError(t, err)
	other, err := store.Create(ctx, 8, "c@d.co")
	assert.NoError(t, err)

	assert.NoError(t, store.DestroyAllForUser(ctx, 7))

	for _, id := range []string{first.ID, second.ID} {
		got, err := store.Get(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}

	// The other user's session survives.
	got, err := store.Get(ctx, other.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got)
}

func TestStoreRecordExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewStore(rdb, time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, "a@b.co")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, sess.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := NewCookieCodec("test-secret", time.Hour)
	sess := &Session{ID: "abc-123", UserID: 9, Email: "u@example.com"}

	value, err := codec.Encode(sess)
	assert.NoError(t, err)
	assert.NotEmpty(t, value)

	got, err := codec.Decode(value)
	assert.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestCookieCodecRejectsTampering(t *testing.T) {
	codec := NewCookieCodec("test-secret", time.Hour)
	value, err := codec.Encode(&Session{ID: "abc", UserID: 1, Email: "u@example.com"})
	assert.NoError(t, err)

	_, err = codec.Decode(value + "x")
	assert.Error(t, err)

	_, err = codec.Decode("not-a-token")
	assert.Error(t, err)
}

func TestCookieCodecRejectsWrongSecret(t *testing.T) {
	signer := NewCookieCodec("secret-one", time.Hour)
	verifier := NewCookieCodec("secret-two", time.Hour)

	value, err := signer.Encode(&Session{ID: "abc", UserID: 1, Email: "u@example.com"})
	assert.NoError(t, err)

	_, err = verifier.Decode(value)
	assert.Error(t, err)
}

func TestCookieCodecRejectsExpired(t *testing.T) {
	codec := NewCookieCodec("test-secret", -time.Minute)

	value, err := codec.Encode(&Session{ID: "abc", UserID: 1, Email: "u@example.com"})
	assert.NoError(t, err)

	_, err = codec.Decode(value)
	assert.Error(t, err)
}
