package directory

import (
	"context"
	"strings"
)

// Resolve maps a scanned or typed code to a student. Three strategies are tried
// in strict order and the first hit wins:
//
//  1. exact match on qrCodeValue
//  2. the code is a bare student id
//  3. the code looks like "<id>-<name>-<pastoral>": split on "-" and match the
//     first segment against ids (only attempted when the split produced at
//     least two segments)
//
// No trimming, no case folding. A miss on all three returns ok=false — absence
// is not an error here; the caller decides how to present it.
func (d *Directory) Resolve(ctx context.Context, code string) (Student, bool, error) {
	students, err := d.List(ctx)
	if err != nil {
		return Student{}, false, err
	}

	for _, s := range students {
		if s.QRCodeValue == code {
			return s, true, nil
		}
	}

	for _, s := range students {
		if s.ID == code {
			return s, true, nil
		}
	}

	if parts := strings.Split(code, "-"); len(parts) > 1 {
		for _, s := range students {
			if s.ID == parts[0] {
				return s, true, nil
			}
		}
	}

	return Student{}, false, nil
}
