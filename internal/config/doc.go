// Package config loads the YAML configuration shared by captcha-mcp and
// captcha-bench.
//
// Settings are layered: Default, then the YAML file, then environment
// variables (see the Env constants). Durations are written as Go duration
// strings such as "10s".
//
// Example file:
//
//	log_level: debug
//	http:
//	  addr: 127.0.0.1:9090
//	  max_upload_bytes: 1048576
//	  shutdown_timeout: 5s
//	challenge:
//	  timeout: 20s
package config
