// Command authz_matrix dumps the role/object capability matrix as JSON, and
// optionally diffs it against a previously exported baseline. Access reviews
// run it before and after a release to confirm no grant changed unnoticed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/models"
)

type grant struct {
	Role        models.UserRole     `json:"role"`
	Object      models.ObjectType   `json:"object"`
	Permissions []models.Permission `json:"permissions"`
	Scoped      bool                `json:"scoped"`
}

var allRoles = []models.UserRole{
	models.RoleAdmin,
	models.RoleClinician,
	models.RoleTrainee,
	models.RoleReceptionist,
}

var allObjects = []models.ObjectType{
	models.ObjectPatient,
	models.ObjectMedicalRecord,
	models.ObjectRadiograph,
	models.ObjectClinicalNote,
	models.ObjectTreatmentPlan,
	models.ObjectAppointment,
	models.ObjectUserAdmin,
	models.ObjectAuditTrail,
}

var allPermissions = []models.Permission{
	models.PermCreate,
	models.PermRead,
	models.PermUpdate,
	models.PermDelete,
	models.PermApprove,
}

func main() {
	var baselinePath string
	flag.StringVar(&baselinePath, "baseline", "", "Path to a baseline JSON export to diff against")
	flag.Parse()

	current := dumpMatrix()

	if baselinePath == "" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(current); err != nil {
			log.Fatalf("failed to encode matrix: %v", err)
		}
		return
	}

	baseline, err := loadBaseline(baselinePath)
	if err != nil {
		log.Fatalf("failed to load baseline: %v", err)
	}

	changes := diff(baseline, current)
	if len(changes) == 0 {
		fmt.Println("matrix matches baseline")
		return
	}
	for _, change := range changes {
		fmt.Println(change)
	}
	os.Exit(1)
}

func dumpMatrix() []grant {
	grants := make([]grant, 0, len(allRoles)*len(allObjects))
	for _, role := range allRoles {
		for _, object := range allObjects {
			caps := authz.CapabilitiesOf(role, object)
			var granted []models.Permission
			for _, perm := range allPermissions {
				if caps.Has(perm) {
					granted = append(granted, perm)
				}
			}
			if len(granted) == 0 {
				continue
			}
			grants = append(grants, grant{
				Role:        role,
				Object:      object,
				Permissions: granted,
				Scoped:      authz.AssignmentScoped(role, object),
			})
		}
	}
	return grants
}

func loadBaseline(path string) ([]grant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var grants []grant
	if err := json.Unmarshal(data, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

func key(g grant) string {
	return string(g.Role) + "/" + string(g.Object)
}

func permKey(g grant) string {
	parts := make([]string, len(g.Permissions))
	for i, p := range g.Permissions {
		parts[i] = string(p)
	}
	sort.Strings(parts)
	joined := ""
	for _, p := range parts {
		joined += p + ","
	}
	if g.Scoped {
		joined += "scoped"
	}
	return joined
}

func diff(baseline, current []grant) []string {
	base := make(map[string]grant, len(baseline))
	for _, g := range baseline {
		base[key(g)] = g
	}
	curr := make(map[string]grant, len(current))
	for _, g := range current {
		curr[key(g)] = g
	}

	var changes []string
	for k, g := range curr {
		prev, ok := base[k]
		if !ok {
			changes = append(changes, fmt.Sprintf("ADDED   %s %v", k, g.Permissions))
			continue
		}
		if permKey(prev) != permKey(g) {
			changes = append(changes, fmt.Sprintf("CHANGED %s %v -> %v", k, prev.Permissions, g.Permissions))
		}
	}
	for k, g := range base {
		if _, ok := curr[k]; !ok {
			changes = append(changes, fmt.Sprintf("REMOVED %s %v", k, g.Permissions))
		}
	}
	sort.Strings(changes)
	return changes
}
