package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

const (
	clusterNameMinLength = 3
	clusterNameMaxLength = 63
	portMin              = 1
	portMax              = 65535
)

func validateDNS1123Label(name string, minimum, maximum int, labelKind string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", labelKind)
	}
	if len(name) < minimum {
		return fmt.Errorf("%s name must be at least %d characters", labelKind, minimum)
	}
	if len(name) > maximum {
		return fmt.Errorf("%s name exceeds %d characters", labelKind, maximum)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s name: %s", labelKind, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateClusterName checks that name is usable as a resource group name and a
// public IP DNS label: lowercase DNS-1123 label starting with a letter.
func ValidateClusterName(name string) error {
	if err := validateDNS1123Label(name, clusterNameMinLength, clusterNameMaxLength, "cluster"); err != nil {
		return err
	}
	if c := name[0]; c < 'a' || c > 'z' {
		return fmt.Errorf("invalid cluster name: must start with a lowercase letter")
	}
	return nil
}

// ValidatePorts checks every port is within the TCP/UDP range.
func ValidatePorts(ports []int) error {
	for i, p := range ports {
		if p < portMin || p > portMax {
			return fmt.Errorf("ports[%d]: %d out of range %d-%d", i, p, portMin, portMax)
		}
	}
	return nil
}
