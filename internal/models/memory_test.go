package models

import "testing"

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range []Category{"", "Core", "archive"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
}
