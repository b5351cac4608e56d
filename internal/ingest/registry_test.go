package ingest

import "testing"

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Sites) == 0 {
		t.Fatal("no sites loaded")
	}
	if reg.Koneps.BaseURL == "" || reg.Koneps.PageSize <= 0 {
		t.Errorf("koneps config incomplete: %+v", reg.Koneps)
	}

	for _, s := range reg.EnabledSites(MethodWebCrawl) {
		if s.URL == "" {
			t.Errorf("crawl site %s has no URL", s.ID)
		}
	}
	if api := reg.EnabledSites(MethodG2BAPI); len(api) == 0 {
		t.Error("no API sites enabled")
	}

	partners := reg.PartnerAgencies()
	if len(partners) == 0 {
		t.Fatal("no partner agencies")
	}

	if _, ok := reg.SiteByAgency("소상공인시장진흥공단"); !ok {
		t.Error("SiteByAgency missed a registered agency")
	}
	if _, ok := reg.SiteByAgency("없는기관"); ok {
		t.Error("SiteByAgency matched an unknown agency")
	}
}
