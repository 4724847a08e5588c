// Команда brewtrack - сервис учета скачиваний Homebrew-бутылок.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// main - точка входа. Выполняет корневую команду и обрабатывает ошибку.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("Ошибка выполнения brewtrack: %v", err)
		os.Exit(1)
	}
}
