package cats

import "testing"

func TestCat_Displays(t *testing.T) {
	c := Cat{Name: "Whiskers"}

	if c.Status() != StatusAvailable {
		t.Fatalf("expected available, got %s", c.Status())
	}
	if c.AgeDisplay() != "Age unknown" {
		t.Fatalf("unexpected age display %q", c.AgeDisplay())
	}
	if c.WeightDisplay() != "Weight unknown" {
		t.Fatalf("unexpected weight display %q", c.WeightDisplay())
	}
	if c.StatusDisplay() != "Available for adoption" {
		t.Fatalf("unexpected status display %q", c.StatusDisplay())
	}
	if c.String() != "Whiskers (Mixed breed)" {
		t.Fatalf("unexpected string %q", c.String())
	}

	c.Breed = strp("Persian")
	c.Age = intp(1)
	c.Weight = floatp(4.5)
	if c.AgeDisplay() != "1 year old" {
		t.Fatalf("unexpected age display %q", c.AgeDisplay())
	}
	c.Age = intp(3)
	if c.AgeDisplay() != "3 years old" {
		t.Fatalf("unexpected age display %q", c.AgeDisplay())
	}
	if c.WeightDisplay() != "4.50 kg" {
		t.Fatalf("unexpected weight display %q", c.WeightDisplay())
	}
	if c.String() != "Whiskers (Persian)" {
		t.Fatalf("unexpected string %q", c.String())
	}
}
