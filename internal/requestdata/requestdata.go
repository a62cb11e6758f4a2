package requestdata

import (
  "context"

  "github.com/google/uuid"
)

const (
  UserTypeAdmin    = "admin"
  UserTypeCustomer = "customer"
)

type key struct{}

var requestDataKey key

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

type RequestData struct {
  TokenString     string
  UserType        string
  AdminUserID     uuid.UUID
  CustomerID      uint
  PhoneNumber     string
}

func (rd *RequestData) IsAdmin() bool {
  return rd != nil && rd.UserType == UserTypeAdmin && rd.AdminUserID != uuid.Nil
}

func (rd *RequestData) IsCustomer() bool {
  return rd != nil && rd.UserType == UserTypeCustomer && rd.CustomerID != 0 && rd.PhoneNumber != ""
}
