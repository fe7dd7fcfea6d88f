// Package donation реализует машину состояний очереди заявок на предмет
// пожертвования. Функции чистые: принимают текущее состояние предмета и
// возвращают новое, не изменяя аргумент.
package donation

import (
	"errors"
	"time"

	"github.com/HasanDroid18/SAWA-Backend/internal/model"
)

var (
	// ErrAlreadyRequested возвращается, если учётная запись уже стоит в очереди.
	ErrAlreadyRequested = errors.New("donation already requested by this account")
	// ErrNoStock возвращается при попытке принять заявку на предмет с нулевым остатком.
	ErrNoStock = errors.New("donation item is out of stock")
)

// Request добавляет заявку в конец очереди. Заявка допускается при любом
// остатке: очередь — это лист ожидания, не зависящий от текущего количества.
func Request(item model.DonationItem, accountID int64, displayName, contact string, now time.Time) (model.DonationItem, error) {
	for _, r := range item.RequestedBy {
		if r.AccountID == accountID {
			return item, ErrAlreadyRequested
		}
	}

	queue := make([]model.DonationRequest, len(item.RequestedBy), len(item.RequestedBy)+1)
	copy(queue, item.RequestedBy)
	queue = append(queue, model.DonationRequest{
		AccountID:   accountID,
		DisplayName: displayName,
		Contact:     contact,
		RequestedAt: now,
	})

	item.RequestedBy = queue
	return item, nil
}

// Accept уменьшает остаток на единицу и очищает очередь целиком: одно
// принятие закрывает весь лист ожидания предмета.
func Accept(item model.DonationItem) (model.DonationItem, error) {
	if item.Quantity <= 0 {
		return item, ErrNoStock
	}

	item.Quantity--
	item.RequestedBy = nil
	return item, nil
}

// Reject очищает очередь целиком, не меняя остаток.
func Reject(item model.DonationItem) (model.DonationItem, error) {
	item.RequestedBy = nil
	return item, nil
}
