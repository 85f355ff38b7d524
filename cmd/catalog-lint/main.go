// Prints the badge catalog and fails if it is internally inconsistent.
// Handy before shipping catalog changes: the server would refuse to boot
// on a broken catalog anyway, but this catches it at review time.
package main

import (
	"fmt"
	"os"

	"speakly/achievements"
)

func main() {
	if err := achievements.ValidateCatalog(); err != nil {
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}

	for _, cat := range achievements.Categories() {
		fmt.Printf("== %s ==\n", cat)
		for _, def := range achievements.ByCategory()[cat] {
			rule := ""
			if def.Criteria.Kind == achievements.KindLevelReached {
				rule = fmt.Sprintf("%s >= %s", def.Criteria.Kind, def.Criteria.Level)
			} else {
				rule = fmt.Sprintf("%s >= %d", def.Criteria.Kind, def.Criteria.Threshold)
			}
			fmt.Printf("  %-16s %-20s %s\n", def.ID, def.Name, rule)
		}
	}
	fmt.Printf("%d definitions OK\n", len(achievements.All()))
}
