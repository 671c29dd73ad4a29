// Package file provides the TOML configuration store.
//
// Settings live in ~/.stopprep/config.toml as nested tables:
//
//	[prepare]
//	data_folder = "/data"
//	train_domains = ["timer", "alarm"]
//
//	[corpus]
//	rate_limit_kbps = 4096
//
// The store exposes them as flat dot keys ("prepare.data_folder").
package file
