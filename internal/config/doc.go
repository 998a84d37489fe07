// Package config loads hellactl settings with viper: a YAML file,
// HELLA_* environment overrides and command-line flags.
//
// Example hella.yaml:
//
//	bus:
//	  interface: slcan
//	  channel: /dev/ttyACM0
//	  bitrate: 500000
//	  ttyBaudrate: 128000
//	protocol:
//	  timeout: 1s
//	  messageDelay: 20ms
//	logging:
//	  level: info
//	  format: console
//	dumps:
//	  dir: ./dumps
package config
