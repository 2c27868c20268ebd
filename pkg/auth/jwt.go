package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	// Secret is the HMAC-SHA256 symmetric key.
	Secret string

	// PrivateKeyPEM is a PEM-encoded RSA private key for signing tokens.
	PrivateKeyPEM string

	// PublicKeyPEM is a PEM-encoded RSA public key for validating tokens.
	PublicKeyPEM string

	Issuer     string
	Expiration time.Duration
}

// ErrNoSigningKey is returned by GenerateToken in validation-only mode.
var ErrNoSigningKey = errors.New("auth: no signing key configured")

// JWTService handles JWT token operations.
type JWTService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	config     JWTConfig
	useRSA     bool
}

// NewJWTService creates a new JWTService with the given configuration.
//
// Configuration modes:
//   - PrivateKeyPEM set: can sign and validate with RS256.
//   - PublicKeyPEM set: validation only with RS256.
//   - Secret set: HS256 signing and validation.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{config: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
		}
		svc.privateKey = privKey
		svc.publicKey = &privKey.PublicKey
		svc.useRSA = true

	case cfg.PublicKeyPEM != "":
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		svc.publicKey = pubKey
		svc.useRSA = true

	case cfg.Secret != "":

	default:
		return nil, errors.New("jwt configuration requires PrivateKeyPEM, PublicKeyPEM, or Secret")
	}

	return svc, nil
}

// GenerateToken creates a signed token for subject carrying roles.
func (s *JWTService) GenerateToken(subject string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Roles: roles,
	}

	if s.useRSA {
		if s.privateKey == nil {
			return "", ErrNoSigningKey
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
		if err != nil {
			return "", fmt.Errorf("failed to sign token with RSA: %w", err)
		}
		return signed, nil
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token string.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if s.useRSA {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v (expected RS256)", token.Header["alg"])
			}
			return s.publicKey, nil
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	return data, nil
}

// GenerateKeyPair generates a 2048-bit RSA keypair and returns PEM-encoded bytes.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return privPEM, pubPEM, nil
}
