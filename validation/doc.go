// Package validation checks configuration values before a run starts.
//
// Struct tag validation uses go-playground/validator with mapstructure key
// names in messages, so errors point at the config key a user would edit:
//
//	type Config struct {
//	    Concurrency int `mapstructure:"concurrency" validate:"gte=1"`
//	}
//	err := validation.ValidateStruct(cfg)
//
// Programmatic checks collect errors fluently:
//
//	v := validation.New()
//	v.OneOf("bootstrap.policy", policy, []string{"lenient", "strict"})
//	err := v.Validate()
//
// Both forms return an *errors.AppError with code INVALID_CONFIG.
package validation
