// Package factory builds pluggable modules (metrics sinks, audit stores)
// from configuration. A module is named by its type string and configured
// by a raw settings map that the factory decodes into its own struct:
//
//	_ = metrics.RegisterMetricsSink("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c InfluxConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewInfluxSinkWithFallback(c), nil
//	})
package factory
