package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoursGuard/internal/model"
)

func TestContextNotifier_WritesToRequestCollector(t *testing.T) {
	ctx, c := WithCollector(context.Background())

	n := Multi{Log{}, Context{}}
	n.Toast(ctx, "已保存")
	n.Modal(ctx, "存储空间不足", "存储使用率 85%", []string{"清理旧数据"})

	notices := c.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, model.NoticeToast, notices[0].Level)
	assert.Equal(t, model.NoticeModal, notices[1].Level)
	assert.Equal(t, []string{"清理旧数据"}, notices[1].Suggestions)
}

func TestContextNotifier_NoCollectorIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		Context{}.Toast(context.Background(), "ignored")
	})
	assert.Nil(t, CollectorFrom(context.Background()))
}
