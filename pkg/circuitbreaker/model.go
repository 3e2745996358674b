package circuitbreaker

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the knobs for a circuit breaker guarding an external dependency.
// Either the count-based pair (FailureCountThreshold/FailureCountWindow) or the
// time-based triple (FailureRateThreshold/FailureRateMinimumWindow/FailureRateWindowInMs)
// must be fully defined when the breaker is enabled.
type Config struct {
	// Enabled bypasses all breaker logic when false.
	Enabled bool

	// Name identifies the breaker in logs and metrics.
	Name string

	// Version selects the breaker implementation.
	Version int

	// FailureCountThreshold is the number of failures out of FailureCountWindow
	// executions that trips the breaker open.
	FailureCountThreshold int

	// FailureCountWindow is the capacity window for count-based thresholding.
	FailureCountWindow int

	// FailureRateThreshold is the failure percentage (1-100) that trips the
	// breaker when evaluated over FailureRateWindowInMs, once at least
	// FailureRateMinimumWindow executions have been recorded.
	FailureRateThreshold int

	// FailureRateMinimumWindow is the minimum number of executions before the
	// rate threshold is evaluated. Prevents tripping on low traffic.
	FailureRateMinimumWindow int

	// FailureRateWindowInMs is the rolling window for rate-based thresholding.
	FailureRateWindowInMs int

	// SuccessCountThreshold is the success ratio required in half-open state
	// for the breaker to close again.
	SuccessCountThreshold int

	// SuccessCountWindow is the number of half-open executions considered when
	// evaluating SuccessCountThreshold.
	SuccessCountWindow int

	// WithDelayInMS is the delay before the breaker moves from open to half-open.
	WithDelayInMS int
}

func BuildConfig(serviceName string) *Config {
	cbConfig := Config{
		Enabled: false,
	}

	if viper.IsSet(serviceName+CBEnabled) && viper.GetBool(serviceName+CBEnabled) {
		cbConfig.Enabled = true
		validateConfigs(serviceName)
		cbConfig.Name = viper.GetString(serviceName + CBName)
		cbConfig.FailureRateThreshold = viper.GetInt(serviceName + CBFailureRateThreshold)
		cbConfig.FailureRateMinimumWindow = viper.GetInt(serviceName + CBFailureRateMinimumWindow)
		cbConfig.FailureRateWindowInMs = viper.GetInt(serviceName + CBFailureRateWindowInMs)
		cbConfig.FailureCountThreshold = viper.GetInt(serviceName + CBFailureCountThreshold)
		cbConfig.FailureCountWindow = viper.GetInt(serviceName + CBFailureCountWindow)
		cbConfig.SuccessCountThreshold = viper.GetInt(serviceName + CBSuccessCountThreshold)
		cbConfig.SuccessCountWindow = viper.GetInt(serviceName + CBSuccessCountWindow)
		cbConfig.WithDelayInMS = viper.GetInt(serviceName + CBWithDelayInMS)
		cbConfig.Version = viper.GetInt(serviceName + CBVersion)
		if (cbConfig.FailureRateThreshold == 0 || cbConfig.FailureRateMinimumWindow == 0 || cbConfig.FailureRateWindowInMs == 0) &&
			(cbConfig.FailureCountThreshold == 0 || cbConfig.FailureCountWindow == 0) {
			log.Panic().Msgf("%s: Configuration invalid, neither time-based nor count-based failure thresholds are fully defined", serviceName)
		}
	}

	return &cbConfig
}

func validateConfigs(serviceName string) {
	if !viper.IsSet(serviceName + CBName) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBName)
	}
	if !viper.IsSet(serviceName+CBFailureRateThreshold) && !viper.IsSet(serviceName+CBFailureCountThreshold) {
		log.Panic().Msgf("%s: Neither time-based nor count-based failure thresholds are set", serviceName)
	}
	if !viper.IsSet(serviceName+CBFailureRateMinimumWindow) && viper.IsSet(serviceName+CBFailureRateThreshold) {
		log.Panic().Msgf("%s-%s not set, required for time-based failure thresholding", serviceName, CBFailureRateMinimumWindow)
	}
	if !viper.IsSet(serviceName+CBFailureRateWindowInMs) && viper.IsSet(serviceName+CBFailureRateThreshold) {
		log.Panic().Msgf("%s-%s not set, required for time-based failure thresholding", serviceName, CBFailureRateWindowInMs)
	}
	if !viper.IsSet(serviceName + CBSuccessCountThreshold) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBSuccessCountThreshold)
	}
	if !viper.IsSet(serviceName + CBSuccessCountWindow) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBSuccessCountWindow)
	}
	if !viper.IsSet(serviceName + CBVersion) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBVersion)
	}
	if !viper.IsSet(serviceName + CBWithDelayInMS) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBWithDelayInMS)
	}
}
