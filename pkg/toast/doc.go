// Package toast provides transient notifications for todoui pages.
//
// Notifications are Bootstrap dismissible alerts inserted at the top of the
// page's content container. Each one removes itself: after its display time
// the alert fades (opacity goes to zero) and a moment later it is detached.
// Removal is idempotent, so an alert the user already closed is simply
// skipped.
//
// # Runtime notifications
//
//	m := toast.NewManager(doc, loop)
//	m.Success("Todo가 성공적으로 추가되었습니다.")
//	m.Show("입력 정보를 확인해주세요.", toast.TypeDanger)
//
// The rendered alert:
//
//	<div class="alert alert-success alert-dismissible fade show" role="alert">
//	    <i class="fas fa-check-circle"></i> Todo가 성공적으로 추가되었습니다.
//	    <button type="button" class="btn-close" data-bs-dismiss="alert"></button>
//	</div>
//
// # Server-rendered alerts
//
// Flash messages rendered by the server are already in the page at load.
// AutoExpire schedules every one of them for the same fade-then-remove
// sequence, with its own (longer) display time.
package toast
