package craft

import (
	"errors"
	"fmt"
)

// ErrUnknownItem — запрос ссылается на ID, которого нет в снапшоте.
// Обычно это признак устаревших или битых рыночных данных, поэтому
// ошибка отдаётся наружу, в отличие от терминального Unavailable.
var ErrUnknownItem = errors.New("unknown item")

// ErrUnobtainable is returned when a shopping list is requested for a
// quantity that no combination of buying, crafting and vendors can supply.
var ErrUnobtainable = errors.New("quantity unobtainable")

func unknownItem(id int32) error {
	return fmt.Errorf("%w: %d", ErrUnknownItem, id)
}
