package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// JSON is a raw JSON column value stored in a jsonb column.
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		cp := make([]byte, len(v))
		copy(cp, v)
		*j = cp
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("model.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// GormDataType tells GORM which column type to use.
func (JSON) GormDataType() string {
	return "jsonb"
}
