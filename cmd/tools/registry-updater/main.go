// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"listing-workers/internal/common/validation"
	"listing-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., filter-listings)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Filter Listings)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "listing", "Category")
	taskType := cmd.String("taskType", "", "Camunda Task Type (defaults to the ID)")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	cmd.Parse(args)

	if *taskType == "" {
		*taskType = *id
	}
	if *id == "" || *displayName == "" || *description == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and description are required for add")
	}

	activity := registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "10s",
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := addActivity(*path, activity); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, etc.)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}
	if err := updateActivity(*path, *id, *field, *value); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

// runCheck validates a job payload file against a task type's input schema.
func runCheck(args []string) error {
	cmd := flag.NewFlagSet("check", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	taskType := cmd.String("taskType", "", "Task type whose input schema to use")
	input := cmd.String("input", "", "JSON file with the job variables")
	cmd.Parse(args)

	if *taskType == "" || *input == "" {
		cmd.Usage()
		return fmt.Errorf("taskType and input are required for check")
	}

	result, err := checkPayload(*path, *taskType, *input)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("payload rejected: %s", result.Summary())
	}
	fmt.Printf("Payload is valid for %s.\n", *taskType)
	return nil
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if _, ok := reg.Find(activity.TaskType); ok {
		return fmt.Errorf("task type %s is already registered", activity.TaskType)
	}
	for _, existing := range reg.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("activity with ID %s already exists", activity.ID)
		}
	}

	reg.Activities = append(reg.Activities, activity)
	return registry.SaveRegistry(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return registry.SaveRegistry(reg, path)
}

func checkPayload(path, taskType, input string) (*validation.ValidationResult, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.Find(taskType)
	if !ok {
		return nil, fmt.Errorf("task type %s is not registered", taskType)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("input is not JSON: %w", err)
	}
	return validation.ValidateInput(payload, activity.InputSchema)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file and its schemas
  check    Validate a job payload against an activity's input schema
  help     Show this help message

Examples:
  registry-updater add -id sort-listings -displayName "Sort Listings" -description "Orders listings by price"
  registry-updater update -id filter-listings -field status -value verified
  registry-updater validate -path configs/activity-registry.json
  registry-updater check -taskType filter-listings -input payload.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
