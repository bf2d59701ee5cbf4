// Package epoch переводит временные метки провайдера (секунды от начала эпохи)
// в локальные значения времени.
package epoch

import "time"

// Time возвращает время для метки ts. Нулевая метка означает отсутствие
// значения у провайдера и превращается в nil, а не в 1970-01-01.
func Time(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

// Unix обратное преобразование: nil превращается в 0.
func Unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}
