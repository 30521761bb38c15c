// renumber_positions rewrites every board column to positions 1..N.
//
//	CONFIG_PATH=config.yaml go run ./cmd/scripts/renumber_positions
package main

import (
	"fmt"
	"log"
	"os"

	gormlogger "gorm.io/gorm/logger"

	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/services"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := models.Open(&cfg.Database, gormlogger.Silent)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fmt.Println("Connected to database successfully!")
	fmt.Println("")

	svc := services.NewTaskService(db)
	printColumns := func(title string) {
		fmt.Println(title)
		fmt.Printf("%-5s %-12s %-8s %-50s\n", "ID", "Status", "Position", "Title")
		fmt.Println("--------------------------------------------------------------------------------")
		for _, status := range models.TaskStatuses {
			tasks, err := svc.List(&services.TaskFilter{Status: status})
			if err != nil {
				log.Fatalf("Failed to query tasks: %v", err)
			}
			for _, t := range tasks {
				title := t.Title
				if len(title) > 50 {
					title = title[:47] + "..."
				}
				fmt.Printf("%-5d %-12s %-8d %-50s\n", t.ID, t.Status, t.Position, title)
			}
		}
		fmt.Println("")
	}

	printColumns("Columns before renumbering:")

	if err := svc.Renumber(); err != nil {
		log.Fatalf("Failed to renumber tasks: %v", err)
	}

	printColumns("Columns after renumbering:")
	fmt.Println("All columns are numbered from 1.")
}
