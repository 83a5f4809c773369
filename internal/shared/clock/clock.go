package clock

import "time"

// Clock abstraksi waktu agar pengecekan masa berlaku (jurisdiction, rule,
// exemption) deterministik saat di-test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System mengembalikan clock berbasis time.Now (UTC).
func System() Clock { return systemClock{} }

// Fixed mengembalikan clock yang selalu menjawab t. Untuk unit test.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }
