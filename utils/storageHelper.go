package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"google.golang.org/api/option"
)

const thumbnailWidth = 200

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func bucketName() (string, error) {
	name := os.Getenv("GCS_BUCKET")
	if name == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return name, nil
}

// SaveFileToGCS uploads base64-encoded file data (receipts, attachments)
// and returns nothing; the object name is chosen by the caller.
func SaveFileToGCS(ctx context.Context, objectName, fileData, contentType string) error {
	decodedData, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return err
	}
	bucket, err := bucketName()
	if err != nil {
		return err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucket, err)
	}

	wc := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(decodedData); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// SaveLogoToGCS uploads a base64-encoded logo plus a 200px wide thumbnail
// next to it (objectName + "_thumb").
func SaveLogoToGCS(ctx context.Context, objectName, imageData string) error {
	decodedData, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return err
	}
	bucket, err := bucketName()
	if err != nil {
		return err
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	if _, err := wc.Write(decodedData); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(decodedData))
	if err != nil {
		// not an image we can decode; keep the original upload
		return nil
	}
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return err
	}

	tc := client.Bucket(bucket).Object(objectName + "_thumb").NewWriter(ctx)
	tc.ContentType = "image/jpeg"
	if _, err := tc.Write(buf.Bytes()); err != nil {
		tc.Close()
		return err
	}
	return tc.Close()
}

// GetSignedURL returns a V4 signed download URL for a stored object.
func GetSignedURL(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	bucket, err := bucketName()
	if err != nil {
		return "", err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return client.Bucket(bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	})
}

// DeleteFromGCS removes an object, ignoring objects that are already gone.
func DeleteFromGCS(ctx context.Context, objectName string) error {
	bucket, err := bucketName()
	if err != nil {
		return err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
