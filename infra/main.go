package main

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v7/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v7/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v7/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi-gcp/sdk/v7/go/gcp/storage"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// Configuration
		cfg := config.New(ctx, "recipebox-infra")
		gcpCfg := config.New(ctx, "gcp")

		env := cfg.Require("environment")
		authTenantID := cfg.Get("authTenantId")
		corsOrigins := cfg.Get("corsOrigin")
		if corsOrigins == "" {
			corsOrigins = "*"
		}

		project := gcpCfg.Require("project")
		region := gcpCfg.Get("region")
		if region == "" {
			region = "us-west1"
		}

		// Resource naming
		namePrefix := fmt.Sprintf("recipebox-%s", env)

		// =================================================================
		// Enable Required GCP APIs
		// =================================================================
		apis := map[string]string{
			"firestore":       "firestore.googleapis.com",
			"storage":         "storage.googleapis.com",
			"identitytoolkit": "identitytoolkit.googleapis.com",
			"iam":             "iam.googleapis.com",
		}

		apiDeps := make([]pulumi.Resource, 0, len(apis))
		for name, api := range apis {
			svc, err := projects.NewService(ctx, fmt.Sprintf("%s-enable-%s-api", namePrefix, name), &projects.ServiceArgs{
				Service:                  pulumi.String(api),
				DisableDependentServices: pulumi.Bool(false),
				DisableOnDestroy:         pulumi.Bool(false),
			})
			if err != nil {
				return err
			}
			apiDeps = append(apiDeps, svc)
		}

		// =================================================================
		// Firestore Database
		// =================================================================
		// Reviews are appended in transactions, which need optimistic concurrency
		firestoreDB, err := firestore.NewDatabase(ctx, fmt.Sprintf("%s-firestore", namePrefix), &firestore.DatabaseArgs{
			Name:                     pulumi.String(namePrefix),
			LocationId:               pulumi.String(region),
			Type:                     pulumi.String("FIRESTORE_NATIVE"),
			ConcurrencyMode:          pulumi.String("OPTIMISTIC"),
			AppEngineIntegrationMode: pulumi.String("DISABLED"),
		}, pulumi.DependsOn(apiDeps))
		if err != nil {
			return err
		}

		// =================================================================
		// Asset Bucket - recipe images and profile photos, publicly readable
		// =================================================================
		bucketName := fmt.Sprintf("%s-%s-assets", project, env)
		bucket, err := storage.NewBucket(ctx, fmt.Sprintf("%s-assets", namePrefix), &storage.BucketArgs{
			Name:                     pulumi.String(bucketName),
			Location:                 pulumi.String(region),
			UniformBucketLevelAccess: pulumi.Bool(true),
			ForceDestroy:             pulumi.Bool(env != "prod"),
			Cors: storage.BucketCorArray{
				&storage.BucketCorArgs{
					Origins:         pulumi.StringArray{pulumi.String(corsOrigins)},
					Methods:         pulumi.StringArray{pulumi.String("GET"), pulumi.String("HEAD")},
					MaxAgeSeconds:   pulumi.Int(3600),
					ResponseHeaders: pulumi.StringArray{pulumi.String("Content-Type")},
				},
			},
		}, pulumi.DependsOn(apiDeps))
		if err != nil {
			return err
		}

		_, err = storage.NewBucketIAMMember(ctx, fmt.Sprintf("%s-assets-public", namePrefix), &storage.BucketIAMMemberArgs{
			Bucket: bucket.Name,
			Role:   pulumi.String("roles/storage.objectViewer"),
			Member: pulumi.String("allUsers"),
		})
		if err != nil {
			return err
		}

		// =================================================================
		// Service Account for the application
		// =================================================================
		saName := fmt.Sprintf("recipebox-%s-app", env)
		serviceAccount, err := serviceaccount.NewAccount(ctx, fmt.Sprintf("%s-sa", namePrefix), &serviceaccount.AccountArgs{
			AccountId:   pulumi.String(saName),
			DisplayName: pulumi.String(fmt.Sprintf("Recipebox %s Service Account", env)),
			Description: pulumi.String("Service account for the recipebox application"),
		}, pulumi.DependsOn(apiDeps))
		if err != nil {
			return err
		}

		// IAM bindings for the service account
		iamRoles := []struct {
			name string
			role string
		}{
			{"firestore-user", "roles/datastore.user"},
			{"firebase-auth-admin", "roles/firebaseauth.admin"},
			{"logging-writer", "roles/logging.logWriter"},
		}

		for _, r := range iamRoles {
			_, err := projects.NewIAMMember(ctx, fmt.Sprintf("%s-sa-%s", namePrefix, r.name), &projects.IAMMemberArgs{
				Project: pulumi.String(project),
				Role:    pulumi.String(r.role),
				Member:  pulumi.Sprintf("serviceAccount:%s", serviceAccount.Email),
			})
			if err != nil {
				return err
			}
		}

		_, err = storage.NewBucketIAMMember(ctx, fmt.Sprintf("%s-sa-assets-writer", namePrefix), &storage.BucketIAMMemberArgs{
			Bucket: bucket.Name,
			Role:   pulumi.String("roles/storage.objectCreator"),
			Member: pulumi.Sprintf("serviceAccount:%s", serviceAccount.Email),
		})
		if err != nil {
			return err
		}

		// =================================================================
		// Outputs
		// =================================================================
		ctx.Export("firestoreDatabase", firestoreDB.Name)
		ctx.Export("assetBucket", bucket.Name)
		ctx.Export("assetBaseUrl", pulumi.Sprintf("https://storage.googleapis.com/%s", bucket.Name))
		ctx.Export("serviceAccountEmail", serviceAccount.Email)

		if authTenantID != "" {
			ctx.Export("authTenantId", pulumi.String(authTenantID))
		}

		// Environment for the CLI
		ctx.Export("env", pulumi.Sprintf(
			"RECIPEBOX_PROJECT_ID=%s RECIPEBOX_FIRESTORE_DATABASE=%s RECIPEBOX_ASSET_BUCKET=%s RECIPEBOX_AUTH_ENABLED=true",
			project, firestoreDB.Name, bucket.Name,
		))

		return nil
	})
}
