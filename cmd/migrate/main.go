// Copyright 2026 The Campus Haiti Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command migrate applies database migrations outside the server
// process, for deploy pipelines that migrate before rolling.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/campushaiti/campushaiti/internal/config"
	"github.com/campushaiti/campushaiti/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		if err := postgres.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied")
	case "status":
		if err := postgres.MigrationStatus(ctx, cfg.Database.DSN()); err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q (want up or status)\n", command)
		os.Exit(1)
	}
}
