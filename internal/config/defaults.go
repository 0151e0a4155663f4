package config

const (
	defaultDataDir            = "~/.local/share/carol"
	defaultLogDir             = "~/.local/share/carol/logs"
	defaultShareBaseAddress   = "https://carol.local/board"
	defaultShareParam         = "greeting"
	defaultRecorderBinary     = "arecord"
	defaultCaptureDevice      = "default"
	defaultCaptureDeviceNode  = "/dev/snd"
	defaultCaptureMaxSeconds  = 300
	defaultCaptureStopTimeout = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Share: Share{
			BaseAddress: defaultShareBaseAddress,
			Param:       defaultShareParam,
		},
		Capture: Capture{
			RecorderBinary: defaultRecorderBinary,
			Device:         defaultCaptureDevice,
			DeviceNode:     defaultCaptureDeviceNode,
			MaxSeconds:     defaultCaptureMaxSeconds,
			StopTimeout:    defaultCaptureStopTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
