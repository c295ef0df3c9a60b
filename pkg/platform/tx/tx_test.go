package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAfterCommitOutsideTxRunsImmediately(t *testing.T) {
	ran := false
	AfterCommit(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}

func TestAfterCommitDefersUntilRun(t *testing.T) {
	ctx, hooks := WithHooks(context.Background())
	assert.True(t, InTx(ctx))

	var order []int
	AfterCommit(ctx, func(context.Context) { order = append(order, 1) })
	AfterCommit(ctx, func(context.Context) { order = append(order, 2) })
	assert.Empty(t, order)

	hooks.Run(context.Background())
	assert.Equal(t, []int{1, 2}, order)

	hooks.Run(context.Background())
	assert.Equal(t, []int{1, 2}, order, "hooks run once")
}

func TestFromWithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	ctx := WithTx(context.Background(), nil)
	_, ok = From(ctx)
	assert.False(t, ok)
}
