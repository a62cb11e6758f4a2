package types

import (
  "github.com/google/uuid"
)

func newIDIfNil(id *uuid.UUID) {
  if *id == uuid.Nil {
    *id = uuid.New()
  }
}
