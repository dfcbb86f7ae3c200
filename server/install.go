package server

import (
	"context"
	"strconv"
	"time"

	"github.com/ceyewan/portalgun/storage"
)

// 安装提示关闭后的静默期
const installPromptQuiet = 7 * 24 * time.Hour

// installPrompt 记录安装提示的关闭时间（毫秒时间戳）
type installPrompt struct {
	st  storage.Storage
	now func() time.Time
}

type installStatus struct {
	Show        bool       `json:"show"`
	DismissedAt *time.Time `json:"dismissedAt,omitempty"`
}

func (p *installPrompt) status(ctx context.Context) (installStatus, error) {
	raw, ok, err := p.st.Get(ctx, storage.KeyInstallDismissed)
	if err != nil {
		return installStatus{}, err
	}
	if !ok {
		return installStatus{Show: true}, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// 无法解析的值视为从未关闭
		return installStatus{Show: true}, nil
	}
	at := time.UnixMilli(ms).UTC()
	return installStatus{
		Show:        p.now().Sub(at) >= installPromptQuiet,
		DismissedAt: &at,
	}, nil
}

func (p *installPrompt) dismiss(ctx context.Context) (installStatus, error) {
	at := p.now().UTC().Truncate(time.Millisecond)
	if err := p.st.Set(ctx, storage.KeyInstallDismissed, strconv.FormatInt(at.UnixMilli(), 10)); err != nil {
		return installStatus{}, err
	}
	return installStatus{Show: false, DismissedAt: &at}, nil
}
