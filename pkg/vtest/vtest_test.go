package vtest_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui"
	"github.com/vango-dev/todoui/pkg/toast"
	"github.com/vango-dev/todoui/pkg/vtest"
)

const todos = `<html><body>
<div class="container">
  <form id="add" action="/user/todos" method="post">
    <div class="mb-3"><input name="title" required></div>
    <button type="submit">추가</button>
  </form>
  <form id="toggle" action="/user/todos/3/toggle" method="post">
    <button type="submit"><i class="fas fa-check"></i></button>
  </form>
  <form id="delete" action="/user/todos/3/delete" method="post">
    <button type="submit"><i class="fas fa-trash"></i></button>
  </form>
</div>
</body></html>`

const (
	addForm    = "//form[@id='add']"
	addButton  = "//form[@id='add']//button"
	titleInput = "//input[@name='title']"
)

func TestEmptyTitleIsBlocked(t *testing.T) {
	h := vtest.NewPage(todos).At("http://localhost/user/todos").MustBuild(t)

	h.MustClick(t, addButton)

	vtest.ExpectSubmissions(t, h, 0)
	vtest.ExpectAnnotation(t, h, titleInput, "이 필드는 필수입니다.")
	vtest.ExpectNotification(t, h, toast.TypeDanger, "입력 정보를 확인해주세요.")
	vtest.ExpectBusy(t, h, addForm, false)
}

func TestFilledTitleSubmits(t *testing.T) {
	h := vtest.NewPage(todos).At("http://localhost/user/todos").MustBuild(t)

	h.MustFill(t, titleInput, "Buy milk")
	ok, err := h.MustSubmit(t, addForm)
	require.NoError(t, err)
	assert.True(t, ok)

	subs := h.Navigator.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "http://localhost/user/todos", subs[0].Action)
	assert.Equal(t, "Buy milk", subs[0].Values.Get("title"))
	assert.True(t, h.Doc.Unloaded())
}

func TestFailedNavigationRestoresAfterTimeout(t *testing.T) {
	h := vtest.NewPage(todos).MustBuild(t)
	h.Navigator.Fail(errors.New("offline"))

	h.MustFill(t, titleInput, "Buy milk")
	_, err := h.Submit(addForm)
	require.Error(t, err)
	vtest.ExpectBusy(t, h, addForm, true)
	vtest.ExpectContains(t, h, "처리 중...")

	h.Advance(5 * time.Second)
	vtest.ExpectBusy(t, h, addForm, false)
	vtest.ExpectNotContains(t, h, "처리 중...")
	vtest.ExpectElapsed(t, h, 5*time.Second)
}

func TestScriptedConfirmations(t *testing.T) {
	h := vtest.NewPage(todos).Confirm(false, true).MustBuild(t)

	_, err := h.Submit("//form[@id='delete']")
	require.NoError(t, err)
	vtest.ExpectSubmissions(t, h, 0)

	_, err = h.Submit("//form[@id='delete']")
	require.NoError(t, err)
	vtest.ExpectSubmissions(t, h, 1)

	prompts := h.Confirmer.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "정말 삭제하시겠습니까?", prompts[0].Title)
}

func TestToggleWaitsForDelay(t *testing.T) {
	h := vtest.NewPage(todos).MustBuild(t)

	_, err := h.Submit("//form[@id='toggle']")
	require.NoError(t, err)
	vtest.ExpectCount(t, h, "//i[@class='fas fa-spinner fa-spin']", 1)
	vtest.ExpectSubmissions(t, h, 0)

	h.Advance(500 * time.Millisecond)
	vtest.ExpectSubmissions(t, h, 1)
}

func TestModalConfirmer(t *testing.T) {
	h := vtest.NewPage(todos).WithModal().MustBuild(t)

	_, err := h.Submit("//form[@id='delete']")
	require.NoError(t, err)
	vtest.ExpectCount(t, h, "//*[@role='dialog']", 1)

	h.MustClick(t, "//button[@data-confirm='accept']")
	vtest.ExpectSubmissions(t, h, 1)
}

func TestChecksReportMismatch(t *testing.T) {
	cfg := todoui.DefaultConfig()
	cfg.DisableAnimations = true
	h := vtest.NewPage(todos).WithConfig(cfg).MustBuild(t)

	err := vtest.CheckSubmissions(h, 3)
	assert.ErrorIs(t, err, vtest.ErrMismatch)
	assert.ErrorIs(t, h.Click("//nothing"), vtest.ErrNotFound)
	assert.ErrorIs(t, vtest.CheckAnnotation(h, "//nothing", "x"), vtest.ErrNotFound)
	assert.NoError(t, vtest.CheckAnnotation(h, titleInput, ""))
	assert.NoError(t, vtest.CheckNotifications(h, 0))
}
