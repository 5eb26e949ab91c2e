package marketplace

import "testing"

const resultsPage = `<html><body>
<div class="listing">
  <h3 class="title"> Established   Bakery </h3>
  <p class="asking-price">Asking Price: $250,000</p>
  <p class="gross-revenue">Gross Revenue: $950k</p>
  <p class="location">Austin, TX</p>
  <p class="description">Turn-key bakery with loyal customers.</p>
  <a href="/business-opportunity/established-bakery/123">View</a>
</div>
<div class="listing">
  <h3 class="title">Card Without Link</h3>
</div>
<div class="listing">
  <h3 class="title">Landscaping Co</h3>
  <p class="asking-price">Not Disclosed</p>
  <a href="https://www.bizbuysell.com/business-opportunity/landscaping/456">View</a>
</div>
<div class="listing">
  <h3 class="title">Third</h3>
  <a href="/business-opportunity/third/789">View</a>
</div>
<ul><li class="next"><a href="?page=2">Next</a></li></ul>
</body></html>`

func TestParseListingsPage(t *testing.T) {
	p, ok := Profile("BizBuySell")
	if !ok {
		t.Fatal("BizBuySell profile missing")
	}

	got, next, err := ParseListingsPage(resultsPage, "https://www.bizbuysell.com/businesses-for-sale/", p, 2)
	if err != nil {
		t.Fatalf("ParseListingsPage: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listings: got %d, want 2", len(got))
	}

	first := got[0]
	if first.Name != "Established   Bakery" {
		t.Errorf("Name: got %q", first.Name)
	}
	if first.Price != "Asking Price: $250,000" {
		t.Errorf("Price: got %q", first.Price)
	}
	if first.Revenue != "Gross Revenue: $950k" {
		t.Errorf("Revenue: got %q", first.Revenue)
	}
	if first.OriginalURL != "https://www.bizbuysell.com/business-opportunity/established-bakery/123" {
		t.Errorf("OriginalURL: got %q", first.OriginalURL)
	}
	if first.Source != "BizBuySell" {
		t.Errorf("Source: got %q", first.Source)
	}
	if got[1].Name != "Landscaping Co" {
		t.Errorf("second card: got %q, linkless card should be skipped", got[1].Name)
	}
	if next != "https://www.bizbuysell.com/businesses-for-sale/?page=2" {
		t.Errorf("next: got %q", next)
	}
}

func TestParseListingsPageNoLimit(t *testing.T) {
	p, _ := Profile("bizbuysell")
	got, _, err := ParseListingsPage(resultsPage, "https://www.bizbuysell.com/businesses-for-sale/", p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("listings: got %d, want 3", len(got))
	}
}

func TestParseDetailDescription(t *testing.T) {
	p, _ := Profile("bizbuysell")
	html := `<html><body><div class="businessDescription">
	  Scalable operation with recurring revenue.
	</div></body></html>`

	got, err := ParseDetailDescription(html, p)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Scalable operation with recurring revenue." {
		t.Errorf("description: got %q", got)
	}
}

func TestProfiles(t *testing.T) {
	if _, ok := Profile("nowhere"); ok {
		t.Error("unexpected profile for unknown source")
	}
	if len(Sources()) != len(profiles) {
		t.Errorf("Sources: got %d, want %d", len(Sources()), len(profiles))
	}
	for key, p := range profiles {
		if p.StartURL == "" || p.CardSelector == "" || p.LinkSelector == "" {
			t.Errorf("profile %s is incomplete", key)
		}
	}
}
