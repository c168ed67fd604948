package validator

import (
	"testing"

	"sarpras/pkg/logger"
	"sarpras/pkg/model"
)

func TestValidate(t *testing.T) {
	v := NewDriverValidator(logger.Discard())

	tests := []struct {
		name      string
		driver    *model.Driver
		wantError bool
	}{
		{"valid", &model.Driver{Code: "D1", Name: "Budi", Phone: "+628123456789"}, false},
		{"missing phone", &model.Driver{Code: "D1", Name: "Budi"}, true},
		{"local phone format", &model.Driver{Code: "D1", Name: "Budi", Phone: "08123456789"}, true},
		{"bad code", &model.Driver{Code: "d 1", Name: "Budi", Phone: "+628123456789"}, true},
		{"short name", &model.Driver{Code: "D1", Name: "B", Phone: "+628123456789"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.driver)
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewDriverValidator(logger.Discard())

	if err := v.ValidateUpdate(&model.DriverUpdate{}); err != nil {
		t.Errorf("empty update should be valid: %v", err)
	}
	if err := v.ValidateUpdate(&model.DriverUpdate{Phone: "12345"}); err == nil {
		t.Error("expected error for non-E.164 phone")
	}
}
