package todoui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 4*time.Second, cfg.Timing.ToastDisplay)
	assert.Equal(t, 300*time.Millisecond, cfg.Timing.ToastRemoveDelay)
	assert.Equal(t, 5*time.Second, cfg.Timing.AlertDisplay)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.AlertFade)
	assert.Equal(t, 5*time.Second, cfg.Timing.BusyTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.ToggleDelay)
	assert.Equal(t, "이 필드는 필수입니다.", cfg.Messages.Form.Required)
	assert.Equal(t, "정말 삭제하시겠습니까?", cfg.Messages.Gate.ConfirmTitle)
	assert.NotNil(t, cfg.logger())
}

func TestBuildGateConfigKeepsNilObserverUnset(t *testing.T) {
	gc := buildGateConfig(Config{}, nil, nil, nil)
	assert.Nil(t, gc.Observer)
	assert.NotNil(t, gc.Logger)
}

func TestBuildToastTiming(t *testing.T) {
	tt := buildToastTiming(TimingConfig{ToastDisplay: time.Second})
	assert.Equal(t, time.Second, tt.Display)
	assert.Zero(t, tt.RemoveDelay)
}
