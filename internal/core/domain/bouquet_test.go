package domain

import "testing"

func TestSortBouquetsByPrice_StableTies(t *testing.T) {
	bs := []Bouquet{
		{Name: "gold", Price: 50000},
		{Name: "red-a", Price: 25000},
		{Name: "blue", Price: 10000},
		{Name: "red-b", Price: 25000},
		{Name: "free", Price: 0},
	}
	SortBouquetsByPrice(bs)

	want := []string{"free", "blue", "red-a", "red-b", "gold"}
	for i, name := range want {
		if bs[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, bs[i].Name)
		}
	}
}

func TestBouquet_Validate(t *testing.T) {
	ok := Bouquet{Name: "blue", Price: 0, MaxAssetsPerCategory: 3, MaxBeneficiaries: Unlimited}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Bouquet{
		{},
		{Name: "x", Price: -1},
		{Name: "x", MaxDependents: -1},
		{Name: "x", MaxBeneficiaries: -2},
		{Name: "x", MaxAssetsPerCategory: -1},
		{Name: "x", RewardPercentage: 101},
	}
	for i, b := range bad {
		if !IsValidation(b.Validate()) {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestBouquet_LimitAndFeatures(t *testing.T) {
	b := &Bouquet{MaxAssetsPerCategory: 6, MaxDependents: 3, MaxBeneficiaries: 5, CanManageBusinesses: true}

	if b.Limit(KindAsset) != 6 || b.Limit(KindDependent) != 3 || b.Limit(KindBeneficiary) != 5 {
		t.Fatal("unexpected limits")
	}
	if b.Limit("liability") != 0 {
		t.Fatal("unknown kind must have zero limit")
	}
	if !b.Has(FeatureManageBusinesses) || b.Has(FeatureExportReports) {
		t.Fatal("unexpected features")
	}

	var none *Bouquet
	if none.Has(FeatureExportReports) || none.Limit(KindAsset) != 0 {
		t.Fatal("nil bouquet grants nothing")
	}

	if _, ok := ParseFeature("can_fly"); ok {
		t.Fatal("unknown feature must not parse")
	}
}

func TestVerificationStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to VerificationStatus
		want     bool
	}{
		{VerificationPending, VerificationApproved, true},
		{VerificationPending, VerificationRejected, true},
		{VerificationApproved, VerificationRejected, false},
		{VerificationRejected, VerificationApproved, false},
		{VerificationNotRequired, VerificationApproved, false},
		{VerificationPending, VerificationPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
