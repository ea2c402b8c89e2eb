package status

import "testing"

func TestDrawStatusCallbacks(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var got []DrawStatus
	RegisterDrawStatusChangeCallback(func(s DrawStatus) { got = append(got, s) })

	SetDrawing("abc", "wheel")
	SetDrawing("abc", "wheel") // 変化なし
	SetIdle()

	if len(got) != 2 {
		t.Fatalf("unexpected callback count: got=%d want=2", len(got))
	}
	if !got[0].Busy || got[0].DrawID != "abc" || got[0].Mode != "wheel" {
		t.Fatalf("unexpected first status: %+v", got[0])
	}
	if got[1].Busy {
		t.Fatalf("second status should be idle: %+v", got[1])
	}
	if IsDrawing() {
		t.Fatalf("should be idle")
	}
}

func TestNotifyPoolChanged_SuppressedWhileDrawing(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	calls := 0
	RegisterPoolChangeCallback(func() { calls++ })

	NotifyPoolChanged()
	SetDrawing("abc", "race")
	NotifyPoolChanged()
	SetIdle()
	NotifyPoolChanged()

	if calls != 2 {
		t.Fatalf("unexpected pool callbacks: got=%d want=2", calls)
	}
}
