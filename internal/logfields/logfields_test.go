package logfields

import (
	"errors"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"Tenant", KeyTenant, "acme", Tenant("acme")},
		{"Site", KeySite, "shop", Site("shop")},
		{"Page", KeyPage, "home", Page("home")},
		{"Section", KeySection, "hero", Section("hero")},
		{"Session", KeySession, "s1", Session("s1")},
		{"Op", KeyOp, "hide_section", Op("hide_section")},
		{"Layout", KeyLayout, "landing", Layout("landing")},
		{"Collection", KeyCollection, "features", Collection("features")},
		{"Revision", KeyRevision, "r1", Revision("r1")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Path", KeyPath, "/api", Path("/api")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attr, ok := tc.attr.(interface {
				String() string
			})
			if !ok {
				t.Fatalf("attr for %s does not stringify", tc.name)
			}
			want := tc.attrKey + "=" + tc.attrVal
			if attr.String() != want {
				t.Errorf("expected %q, got %q", want, attr.String())
			}
		})
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).String(); got != KeyError+"=" {
		t.Errorf("nil error attr: %q", got)
	}
	if got := Error(errors.New("boom")).String(); got != KeyError+"=boom" {
		t.Errorf("error attr: %q", got)
	}
}
