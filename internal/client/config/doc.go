// Package config loads runtime configuration for the VaultShare CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. VAULTSHARE_SERVER, VAULTSHARE_DB, VAULTSHARE_DOWNLOAD_DIR,
//     VAULTSHARE_TIMEOUT and VAULTSHARE_MAX_FILE_SIZE.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   address:port of the gRPC endpoint
//	-f string   local SQLite database holding the session
//	-o string   directory decrypted downloads are written to
//	-t string   per-command timeout, seconds or a duration ("1m", "1d")
//	-m int      largest file accepted for upload or download (bytes)
//
// JSON keys mirror the flags:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_file": "vaultshare.db",
//	  "download_dir": "downloads",
//	  "request_timeout": "30s",
//	  "max_file_size": 33554432
//	}
package config
