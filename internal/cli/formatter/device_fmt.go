package formatter

import (
	"fmt"

	"github.com/alexanderramin/focussync/internal/domain"
)

func FormatDevice(d *domain.Device) string {
	name := d.Name
	if name == "" {
		name = Dim("(unnamed)")
	}
	return fmt.Sprintf("%s %s\n%s %s\n%s %s",
		Dim("name:     "), Bold(name),
		Dim("origin-id:"), d.ID,
		Dim("since:    "), d.CreatedAt.Local().Format("Jan 2, 2006"))
}
