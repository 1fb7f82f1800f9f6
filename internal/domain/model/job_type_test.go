package model

import "testing"

func TestDescriptors(t *testing.T) {
	t.Run("every job type carries a complete descriptor", func(t *testing.T) {
		for _, jt := range JobTypes() {
			d, ok := jt.Descriptor()
			if !ok {
				t.Fatalf("%s: missing descriptor", jt)
			}
			if d.SubmitPath == "" || d.ReportPath == "" || d.UserField == "" || d.FileLabel == "" {
				t.Errorf("%s: incomplete descriptor: %+v", jt, d)
			}
			switch d.Completion {
			case CompletionFetch:
				if d.DownloadPath == "" {
					t.Errorf("%s: fetch mode requires a download path", jt)
				}
			case CompletionInline:
				if d.DownloadPath != "" {
					t.Errorf("%s: inline mode must not carry a download path", jt)
				}
			}
		}
	})

	t.Run("user field naming follows the server contract per type", func(t *testing.T) {
		cases := map[JobType]string{
			JobTypeGTINVerification: "userName",
			JobTypePriceStockUpdate: "usuario",
			JobTypeOfferPublication: "usuario",
			JobTypeOfferDeletion:    "usuario",
		}
		for jt, want := range cases {
			d, _ := jt.Descriptor()
			if d.UserField != want {
				t.Errorf("%s: user field = %q, want %q", jt, d.UserField, want)
			}
		}
	})

	t.Run("exactly one type uses the nested inline layout", func(t *testing.T) {
		d, _ := JobTypeGTINVerification.Descriptor()
		if d.Shape != ShapeNestedJob || d.Completion != CompletionInline {
			t.Errorf("gtin descriptor = %+v", d)
		}
		for _, jt := range []JobType{JobTypePriceStockUpdate, JobTypeOfferPublication, JobTypeOfferDeletion} {
			d, _ := jt.Descriptor()
			if d.Shape != ShapeFlat || d.Completion != CompletionFetch {
				t.Errorf("%s: expected flat fetch descriptor, got %+v", jt, d)
			}
		}
	})
}

func TestParseJobType(t *testing.T) {
	if jt, ok := ParseJobType("price-stock-update"); !ok || jt != JobTypePriceStockUpdate {
		t.Errorf("parse = %q, %v", jt, ok)
	}
	if _, ok := ParseJobType("price_stock_update"); ok {
		t.Error("underscored alias must not parse")
	}
	if _, ok := ParseJobType(""); ok {
		t.Error("empty string must not parse")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusPending:    false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
