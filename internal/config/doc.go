// Package config provides configuration management for lfsclean.
// It loads configuration from defaults, a YAML file and the environment,
// validates it, and resolves the directories the cleaner reads and writes.
//
// # Configuration Sources
//
// Configuration is layered in order of increasing precedence:
//
//	1. Default values (Default)
//	2. YAML file (explicit path, or lfsclean.yaml / configs/lfsclean.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// Environment variables use the LFS_ prefix followed by the section and key:
//
//	LFS_SERVER_PORT=9090
//	LFS_LOGGING_LEVEL=debug
//	LFS_CLEANING_UNEMPLOYED_ONLY=false
//	LFS_CLEANING_WORKERS=8
//	LFS_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://lfs.example.org
//
// # Example YAML
//
//	cleaning:
//	  unemployed_only: false
//	  classification_mode: true
//	  output_format: xlsx
//	paths:
//	  base_dir: /srv/lfs
//
// # Validation
//
// Every section carries validator struct tags; Load returns an
// errors.ErrTypeConfig AppError naming each failing field.
//
// # Paths
//
// NewPaths resolves relative directories against PathsConfig.BaseDir, or the
// executable directory when it is empty:
//
//	base/
//	  ├── data/
//	  │   ├── extracts/   (raw monthly extracts)
//	  │   ├── cleaned/    (cleaned tables)
//	  │   └── reports/    (summaries and drop reports)
//	  └── logs/
package config
