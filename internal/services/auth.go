package services

import (
  "context"
  "fmt"
  "strconv"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/requestdata"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
  "github.com/medicare-pharmacy/medicare-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  UserType      string      `json:"user_type"`
  CustomerID    uint        `json:"customer_id,omitempty"`
  PhoneNumber   string      `json:"phone_number,omitempty"`
}

type AuthService interface {
  Register(ctx context.Context, username, password string) (*types.AdminUser, string, error)
  Login(ctx context.Context, username, password string) (*types.AdminUser, string, error)
  Logout(ctx context.Context) error

  IssueCustomerToken(ctx context.Context, tx *gorm.DB, customer *types.Customer) (string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

  issueAdminTokenLogic(ctx context.Context, tx *gorm.DB, user *types.AdminUser) (string, error)
  signToken(claims JWTClaims) (string, time.Time, error)

  GetAccessTTL() time.Duration
}

type authService struct {
  db                *gorm.DB
  log               *logger.Logger
  adminUserRepo     repos.AdminUserRepo
  userTokenRepo     repos.UserTokenRepo
  jwtSecretKey      string
  accessTTL         time.Duration
}

func NewAuthService(
  db                *gorm.DB,
  log               *logger.Logger,
  adminUserRepo     repos.AdminUserRepo,
  userTokenRepo     repos.UserTokenRepo,
  jwtSecretKey      string,
  accessTTL         time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:             db,
    log:            serviceLog,
    adminUserRepo:  adminUserRepo,
    userTokenRepo:  userTokenRepo,
    jwtSecretKey:   jwtSecretKey,
    accessTTL:      accessTTL,
  }
}

//----------------------------------------------------------------------------------------------------------------------
// Register, Login, Logout
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) Register(ctx context.Context, username, password string) (*types.AdminUser, string, error) {
  as.log.Info("Starting Register now...")
  user := &types.AdminUser{Username: username, Password: password}

  //1) Normalize & Validate
  utils.NormalizeAdminFields(ctx, user)
  if vErr := utils.AdminInputValidation(ctx, as.log, "registration", user.Username, user.Password); vErr != nil {
    return nil, "", vErr
  }

  //2) Hash Password
  if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
    return nil, "", hErr
  }

  //3) Create user and first token together
  var accessToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    exists, err := as.adminUserRepo.UsernameExists(ctx, tx, user.Username)
    if err != nil {
      return fmt.Errorf("failed checking username existence: %w", err)
    }
    if exists {
      as.log.Warn("Username already exists, Cannot proceed.", "username", user.Username)
      return errordata.New(errordata.KindConflict, "Username already exists")
    }
    if _, err := as.adminUserRepo.Create(ctx, tx, user); err != nil {
      return fmt.Errorf("failed to create admin user: %w", err)
    }
    tok, err := as.issueAdminTokenLogic(ctx, tx, user)
    if err != nil {
      return err
    }
    accessToken = tok
    return nil
  })
  if err != nil {
    return nil, "", err
  }
  return user, accessToken, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.AdminUser, string, error) {
  //1) Normalize Input
  name := normalization.ParseInputString(username)
  pass := normalization.ParseInputString(password)

  //2) Input Validations
  if vErr := utils.AdminInputValidation(ctx, as.log, "login", name, pass); vErr != nil {
    return nil, "", vErr
  }

  //3) Find User & Compare
  invalid := errordata.New(errordata.KindUnauthorized, "Invalid credentials")
  user, err := as.adminUserRepo.GetByUsername(ctx, nil, name)
  if err != nil {
    return nil, "", fmt.Errorf("error retrieving admin user: %w", err)
  }
  if user == nil {
    as.log.Warn("Unknown username on login", "username", name)
    return nil, "", invalid
  }
  if !utils.CheckPassword(user.Password, pass) {
    as.log.Warn("Invalid password on login", "username", name)
    return nil, "", invalid
  }

  //4) Issue
  var accessToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    tok, err := as.issueAdminTokenLogic(ctx, tx, user)
    if err != nil {
      return err
    }
    accessToken = tok
    return nil
  }); err != nil {
    return nil, "", err
  }
  return user, accessToken, nil
}

// Logout revokes the token the request was authenticated with.
func (as *authService) Logout(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    as.log.Warn("No Request Data found in context, Cannot proceed.")
    return errordata.New(errordata.KindUnauthorized, "Authentication required")
  }
  if _, err := as.userTokenRepo.FullDeleteByAccessTokens(ctx, nil, []string{rd.TokenString}); err != nil {
    return fmt.Errorf("error deleting user token: %w", err)
  }
  return nil
}

//----------------------------------------------------------------------------------------------------------------------
// Token issuance
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) issueAdminTokenLogic(ctx context.Context, tx *gorm.DB, user *types.AdminUser) (string, error) {
  tok, expiresAt, err := as.signToken(JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String()},
    UserType:         requestdata.UserTypeAdmin,
  })
  if err != nil {
    return "", fmt.Errorf("generate access token error: %w", err)
  }
  adminID := user.ID
  userToken := &types.UserToken{
    UserType:     requestdata.UserTypeAdmin,
    AdminUserID:  &adminID,
    AccessToken:  tok,
    ExpiresAt:    expiresAt,
    CreatedAt:    time.Now().UTC(),
  }
  if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
    return "", fmt.Errorf("create user token error: %w", err)
  }
  return tok, nil
}

// IssueCustomerToken binds the customer's phone number into the token so that
// customer reads can be scoped to it.
func (as *authService) IssueCustomerToken(ctx context.Context, tx *gorm.DB, customer *types.Customer) (string, error) {
  tok, expiresAt, err := as.signToken(JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{Subject: "customer:" + strconv.FormatUint(uint64(customer.ID), 10)},
    UserType:         requestdata.UserTypeCustomer,
    CustomerID:       customer.ID,
    PhoneNumber:      customer.PhoneNumber,
  })
  if err != nil {
    return "", fmt.Errorf("generate access token error: %w", err)
  }
  customerID := customer.ID
  userToken := &types.UserToken{
    UserType:     requestdata.UserTypeCustomer,
    CustomerID:   &customerID,
    PhoneNumber:  customer.PhoneNumber,
    AccessToken:  tok,
    ExpiresAt:    expiresAt,
    CreatedAt:    time.Now().UTC(),
  }
  if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
    return "", fmt.Errorf("create user token error: %w", err)
  }
  return tok, nil
}

func (as *authService) signToken(claims JWTClaims) (string, time.Time, error) {
  now := time.Now().UTC()
  expiresAt := now.Add(as.accessTTL)
  claims.ID = uuid.NewString()
  claims.IssuedAt = jwt.NewNumericDate(now)
  claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString([]byte(as.jwtSecretKey))
  if err != nil {
    return "", time.Time{}, err
  }
  return signed, expiresAt, nil
}

//----------------------------------------------------------------------------------------------------------------------
// SetContextFromToken
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  unauthorized := func(msg string, err error) error {
    return errordata.Wrap(errordata.KindUnauthorized, msg, err)
  }

  claims := &JWTClaims{}
  parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
  if err != nil || !parsedToken.Valid {
    return ctx, unauthorized("Invalid or expired token", err)
  }

  stored, err := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString)
  if err != nil {
    as.log.Warn("Error fetching user token by access token, Cannot proceed.", "error", err)
    return ctx, fmt.Errorf("failed to fetch user token by access token: %w", err)
  }
  if stored == nil {
    return ctx, unauthorized("Token has been revoked", nil)
  }
  if time.Now().After(stored.ExpiresAt) {
    return ctx, unauthorized("Invalid or expired token", nil)
  }

  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserType:    claims.UserType,
  }
  switch claims.UserType {
  case requestdata.UserTypeAdmin:
    adminID, err := uuid.Parse(claims.Subject)
    if err != nil {
      return ctx, unauthorized("Invalid token subject", err)
    }
    rd.AdminUserID = adminID
  case requestdata.UserTypeCustomer:
    rd.CustomerID = claims.CustomerID
    rd.PhoneNumber = claims.PhoneNumber
  default:
    return ctx, unauthorized("Invalid token type", nil)
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
