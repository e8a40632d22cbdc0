package format

import "fmt"

// Binary unit sizes (IEC standard)
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// Size formats a file size using binary units. Database files and their
// backups never come near TiB, so GiB is the largest unit.
//
//	Size(512) = "512 B"
//	Size(1536) = "1.5 KiB"
func Size(n int64) string {
	if n < 0 {
		return "-" + Size(-n)
	}

	switch {
	case n >= GiB:
		return fmt.Sprintf("%.1f GiB", float64(n)/float64(GiB))
	case n >= MiB:
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(MiB))
	case n >= KiB:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(KiB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
