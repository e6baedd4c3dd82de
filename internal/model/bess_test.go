package model

import "testing"

func TestKParameter_BucketAndCoefficient(t *testing.T) {
	k := KParameter{
		Thresholds: [3]float64{5, 10, 15},
		A:          map[string]float64{"K1": 0.17, "K2": 0.5, "K3": 0.83, "K4": 1.0},
	}

	cases := []struct {
		deltaS     float64
		wantBucket string
		wantA      float64
	}{
		{0, "K1", 0.17},
		{5, "K1", 0.17},
		{7, "K2", 0.5},
		{10, "K2", 0.5},
		{12, "K3", 0.83},
		{15, "K3", 0.83},
		{200, "K4", 1.0},
	}
	for _, c := range cases {
		if got := k.Bucket(c.deltaS); got != c.wantBucket {
			t.Errorf("Bucket(%v) = %q, want %q", c.deltaS, got, c.wantBucket)
		}
		if got := k.Coefficient(c.deltaS); got != c.wantA {
			t.Errorf("Coefficient(%v) = %v, want %v", c.deltaS, got, c.wantA)
		}
	}
}

func TestBESSConfig_Validate(t *testing.T) {
	valid := BESSConfig{EmaxTotal: 10, ArbiFraction: 0.5, EtaCh: 0.95, EtaDis: 0.95, LambdaH: 0.001}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error on valid config: %v", err)
	}

	bad := valid
	bad.EmaxTotal = 0
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for emax_total <= 0")
	}

	bad = valid
	bad.EtaCh = 1.5
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for eta_ch out of (0,1]")
	}

	bad = valid
	bad.LambdaH = 1
	if err := bad.Validate(); err == nil {
		t.Errorf("expected error for lambda_h >= 1")
	}
}
